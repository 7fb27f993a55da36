// AngelaMos | 2026
// resolver.go

// Package lookup turns finder input into a token. Every path, including
// internal failures, yields a token of the same shape so callers cannot
// learn whether a code was ever issued.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/tagback/internal/core"
	"github.com/carterperez-dev/tagback/internal/identifier"
	"github.com/carterperez-dev/tagback/internal/metrics"
	"github.com/carterperez-dev/tagback/internal/owner"
	"github.com/carterperez-dev/tagback/internal/tag"
	"github.com/carterperez-dev/tagback/internal/token"
)

var tracer = otel.Tracer("github.com/carterperez-dev/tagback/internal/lookup")

type RecordReader interface {
	GetByDisplayID(ctx context.Context, displayID string) (*tag.Record, error)
	GetByToken(ctx context.Context, token string) (*tag.Record, error)
}

type Result struct {
	Token string `json:"token"`
}

type Config struct {
	Records    RecordReader
	Owners     owner.Checker
	Decoys     *token.DecoyDeriver
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	MinLatency time.Duration
}

type Resolver struct {
	records    RecordReader
	owners     owner.Checker
	decoys     *token.DecoyDeriver
	metrics    *metrics.Metrics
	logger     *slog.Logger
	minLatency time.Duration
	now        func() time.Time
}

func NewResolver(cfg Config) *Resolver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		records:    cfg.Records,
		owners:     cfg.Owners,
		decoys:     cfg.Decoys,
		metrics:    cfg.Metrics,
		logger:     logger,
		minLatency: cfg.MinLatency,
		now:        time.Now,
	}
}

// Lookup never fails. Callers get the real token only for an active
// record whose owner is currently eligible.
func (r *Resolver) Lookup(ctx context.Context, raw string) (res Result) {
	ctx, span := tracer.Start(ctx, "lookup.Lookup")
	defer span.End()

	start := r.now()
	outcome := metrics.OutcomeFault
	normalized := identifier.Normalize(raw)

	defer func() {
		if p := recover(); p != nil {
			r.fault(ctx, normalized, fmt.Errorf("panic: %v", p))
			res = Result{Token: r.decoys.Derive(token.NamespaceFault, normalized)}
			outcome = metrics.OutcomeFault
		}
		r.pad(ctx, start)
		r.metrics.ObserveLookup(outcome, r.now().Sub(start))
		span.SetAttributes(attribute.String("lookup.outcome", outcome))
	}()

	tok, outcome, err := r.resolve(ctx, raw, normalized, start)
	if err != nil {
		r.fault(ctx, normalized, err)
		return Result{Token: r.decoys.Derive(token.NamespaceFault, normalized)}
	}

	return Result{Token: tok}
}

// placeholderOwnerID never belongs to a user. Branches without a live
// record check it so they pay for the same eligibility read as the real
// path.
const placeholderOwnerID = "00000000-0000-0000-0000-000000000000"

// resolve performs one record read and one eligibility read on every
// branch, so store latency does not separate real codes from decoys.
func (r *Resolver) resolve(
	ctx context.Context,
	raw, normalized string,
	start time.Time,
) (string, string, error) {
	rec, err := r.records.GetByDisplayID(ctx, normalized)
	switch {
	case errors.Is(err, core.ErrNotFound):
		rec = nil
	case err != nil:
		return "", metrics.OutcomeFault, err
	}

	// Invalid shapes cannot be issued even if the store echoes a row.
	if !identifier.IsValid(normalized) {
		rec = nil
	}

	subject := placeholderOwnerID
	if rec != nil && rec.IsActive() {
		subject = rec.OwnerID
	}

	snap, err := r.owners.Eligibility(ctx, subject)
	if err != nil {
		return "", metrics.OutcomeFault, err
	}

	notIssued := r.decoys.Derive(token.NamespaceLookup, normalized)

	switch {
	case strings.TrimSpace(raw) == "":
		nonce := strconv.FormatInt(start.UnixNano(), 10)
		return r.decoys.Derive(token.NamespaceMissing, nonce), metrics.OutcomeMissing, nil
	case rec == nil:
		return notIssued, metrics.OutcomeNotFound, nil
	case !rec.IsActive():
		return notIssued, metrics.OutcomeInactive, nil
	case !snap.Eligible():
		return r.decoys.Derive(token.NamespaceExpired, normalized), metrics.OutcomeExpired, nil
	}

	return rec.Token, metrics.OutcomeReal, nil
}

// ResolveToken maps a token back to its owner for the contact path. It
// fails closed: anything other than an active record with an active
// owner account is reported as no match.
func (r *Resolver) ResolveToken(ctx context.Context, tok string) (string, bool) {
	ctx, span := tracer.Start(ctx, "lookup.ResolveToken")
	defer span.End()

	if !token.IsWellFormed(tok) {
		return "", false
	}

	rec, err := r.records.GetByToken(ctx, tok)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			r.logger.WarnContext(ctx, "token resolution failed",
				"error", err,
				"token_fp", r.decoys.Label(tok),
			)
			core.SetSpanError(ctx, err)
		}
		return "", false
	}

	if !rec.IsActive() {
		return "", false
	}

	snap, err := r.owners.Eligibility(ctx, rec.OwnerID)
	if err != nil {
		r.logger.WarnContext(ctx, "owner check failed during token resolution",
			"error", err,
			"token_fp", r.decoys.Label(tok),
		)
		core.SetSpanError(ctx, err)
		return "", false
	}

	if !snap.AccountActive {
		return "", false
	}

	return rec.OwnerID, true
}

func (r *Resolver) fault(ctx context.Context, normalized string, err error) {
	r.logger.ErrorContext(ctx, "lookup fault",
		"error", err,
		"code_fp", r.decoys.Label(normalized),
	)
	core.SetSpanError(ctx, err)
}

// pad holds the response until minLatency has passed since start. It is a
// floor under the equal-work branches in resolve, not a replacement.
func (r *Resolver) pad(ctx context.Context, start time.Time) {
	if r.minLatency <= 0 {
		return
	}

	remaining := r.minLatency - r.now().Sub(start)
	if remaining <= 0 {
		return
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
