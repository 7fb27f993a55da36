// AngelaMos | 2026
// allocator.go

package tag

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/tagback/internal/core"
	"github.com/carterperez-dev/tagback/internal/identifier"
	"github.com/carterperez-dev/tagback/internal/metrics"
	"github.com/carterperez-dev/tagback/internal/token"
)

const DefaultMaxAttempts = 100

// ErrAllocationExhausted means the attempt ceiling was reached without a
// free identifier. Treat it as a keyspace capacity alarm, not a transient
// failure to retry.
var ErrAllocationExhausted = errors.New("allocation exhausted")

var tracer = otel.Tracer("github.com/carterperez-dev/tagback/internal/tag")

type Allocator struct {
	maxAttempts int
	random      io.Reader
	metrics     *metrics.Metrics
}

type AllocatorOption func(*Allocator)

func WithMaxAttempts(n int) AllocatorOption {
	return func(a *Allocator) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// WithRandom replaces crypto/rand for both identifiers and tokens.
func WithRandom(r io.Reader) AllocatorOption {
	return func(a *Allocator) {
		a.random = r
	}
}

func WithMetrics(m *metrics.Metrics) AllocatorOption {
	return func(a *Allocator) {
		a.metrics = m
	}
}

func NewAllocator(opts ...AllocatorOption) *Allocator {
	a := &Allocator{maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Allocator) MaxAttempts() int {
	return a.maxAttempts
}

// Allocate returns an identifier and token that store does not hold yet.
// It persists nothing; a concurrent writer can still claim the pair before
// the caller inserts it, which the caller sees as core.ErrDuplicateKey.
func (a *Allocator) Allocate(ctx context.Context, store Uniqueness) (Pair, error) {
	ctx, span := tracer.Start(ctx, "tag.Allocate")
	defer span.End()

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Pair{}, fmt.Errorf("allocate: %w", err)
		}

		pair, ok, err := a.try(ctx, store)
		if err != nil {
			core.SetSpanError(ctx, err)
			return Pair{}, fmt.Errorf("allocate: %w", err)
		}
		if ok {
			a.metrics.ObserveAllocation(attempt)
			span.SetAttributes(attribute.Int("tag.allocation.attempts", attempt))
			return pair, nil
		}
	}

	a.metrics.IncrementExhausted()
	span.SetAttributes(attribute.Int("tag.allocation.attempts", a.maxAttempts))
	core.SetSpanError(ctx, ErrAllocationExhausted)

	return Pair{}, fmt.Errorf(
		"allocate after %d attempts: %w",
		a.maxAttempts,
		ErrAllocationExhausted,
	)
}

func (a *Allocator) try(ctx context.Context, store Uniqueness) (Pair, bool, error) {
	displayID, err := identifier.Generate(a.random)
	if err != nil {
		return Pair{}, false, err
	}

	if !identifier.IsValid(displayID) {
		a.metrics.IncrementCollision(metrics.CollisionPattern)
		return Pair{}, false, nil
	}

	taken, err := store.ExistsByDisplayID(ctx, displayID)
	if err != nil {
		return Pair{}, false, err
	}
	if taken {
		a.metrics.IncrementCollision(metrics.CollisionIdentifier)
		core.AddSpanEvent(ctx, "identifier collision")
		return Pair{}, false, nil
	}

	tok, err := a.token()
	if err != nil {
		return Pair{}, false, err
	}

	taken, err = store.ExistsByToken(ctx, tok)
	if err != nil {
		return Pair{}, false, err
	}
	if taken {
		a.metrics.IncrementCollision(metrics.CollisionToken)
		core.AddSpanEvent(ctx, "token collision")
		return Pair{}, false, nil
	}

	return Pair{DisplayID: displayID, Token: tok}, true, nil
}

func (a *Allocator) token() (string, error) {
	if a.random == nil {
		return token.Generate()
	}
	return token.GenerateFrom(a.random)
}
