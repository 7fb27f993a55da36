// AngelaMos | 2026
// allocator_test.go

package tag

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/tagback/internal/identifier"
	"github.com/carterperez-dev/tagback/internal/metrics"
	"github.com/carterperez-dev/tagback/internal/token"
)

type fakeUniqueness struct {
	displayTaken func(string) bool
	tokenTaken   func(string) bool
	err          error
	displayCalls atomic.Int64
	tokenCalls   atomic.Int64
}

func (f *fakeUniqueness) ExistsByDisplayID(_ context.Context, id string) (bool, error) {
	f.displayCalls.Add(1)
	if f.err != nil {
		return false, f.err
	}
	return f.displayTaken != nil && f.displayTaken(id), nil
}

func (f *fakeUniqueness) ExistsByToken(_ context.Context, tok string) (bool, error) {
	f.tokenCalls.Add(1)
	if f.err != nil {
		return false, f.err
	}
	return f.tokenTaken != nil && f.tokenTaken(tok), nil
}

func TestAllocator_Allocate(t *testing.T) {
	a := NewAllocator()

	pair, err := a.Allocate(context.Background(), &fakeUniqueness{})
	require.NoError(t, err)
	assert.True(t, identifier.IsValid(pair.DisplayID))
	assert.True(t, token.IsWellFormed(pair.Token))
	assert.NotContains(t, pair.Token, pair.DisplayID)
}

func TestAllocator_SkipsTakenIdentifiers(t *testing.T) {
	var seen atomic.Int64
	store := &fakeUniqueness{
		displayTaken: func(string) bool { return seen.Add(1) <= 3 },
	}

	pair, err := NewAllocator().Allocate(context.Background(), store)
	require.NoError(t, err)
	assert.True(t, identifier.IsValid(pair.DisplayID))
	assert.Equal(t, int64(4), store.displayCalls.Load())
	assert.Equal(t, int64(1), store.tokenCalls.Load())
}

func TestAllocator_SkipsTakenTokens(t *testing.T) {
	var seen atomic.Int64
	store := &fakeUniqueness{
		tokenTaken: func(string) bool { return seen.Add(1) == 1 },
	}

	_, err := NewAllocator().Allocate(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, int64(2), store.tokenCalls.Load())
}

func TestAllocator_Exhausted(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	store := &fakeUniqueness{
		displayTaken: func(string) bool { return true },
	}

	a := NewAllocator(WithMaxAttempts(10), WithMetrics(m))
	_, err := a.Allocate(context.Background(), store)

	require.ErrorIs(t, err, ErrAllocationExhausted)
	assert.LessOrEqual(t, store.displayCalls.Load(), int64(10))
	assert.Zero(t, store.tokenCalls.Load())
	assert.InDelta(t, 1, testutil.ToFloat64(m.AllocationExhausted), 0)
}

func TestAllocator_RejectsPatternLocally(t *testing.T) {
	zeros := bytes.NewReader(make([]byte, 4096))
	store := &fakeUniqueness{}

	a := NewAllocator(WithMaxAttempts(5), WithRandom(zeros))
	_, err := a.Allocate(context.Background(), store)

	require.ErrorIs(t, err, ErrAllocationExhausted)
	assert.Zero(t, store.displayCalls.Load(), "AAA111 must never reach the store")
}

func TestAllocator_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("store unavailable")

	_, err := NewAllocator().Allocate(context.Background(), &fakeUniqueness{err: boom})
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrAllocationExhausted)
}

func TestAllocator_RandomSourceFailurePropagates(t *testing.T) {
	a := NewAllocator(WithRandom(bytes.NewReader(nil)))

	_, err := a.Allocate(context.Background(), &fakeUniqueness{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAllocationExhausted)
}

func TestAllocator_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAllocator().Allocate(ctx, &fakeUniqueness{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestAllocator_Options(t *testing.T) {
	assert.Equal(t, DefaultMaxAttempts, NewAllocator().MaxAttempts())
	assert.Equal(t, 7, NewAllocator(WithMaxAttempts(7)).MaxAttempts())
	assert.Equal(t, DefaultMaxAttempts, NewAllocator(WithMaxAttempts(0)).MaxAttempts())
}
