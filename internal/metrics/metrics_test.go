// AngelaMos | 2026
// metrics_test.go

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Recorders(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveLookup(OutcomeReal, 10*time.Millisecond)
	m.ObserveLookup(OutcomeFault, time.Millisecond)
	m.ObserveLookup(OutcomeFault, time.Millisecond)
	m.IncrementCollision(CollisionIdentifier)
	m.IncrementExhausted()
	m.SetKeyspace(42, 6955200)
	m.IncrementContact(true)
	m.IncrementContact(false)
	m.IncrementRateLimited("finder")
	m.IncrementRateLimitFallback("global")

	assert.InDelta(t, 1, testutil.ToFloat64(m.LookupsTotal.WithLabelValues(OutcomeReal)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.LookupsTotal.WithLabelValues(OutcomeFault)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AllocationCollisions.WithLabelValues(CollisionIdentifier)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AllocationExhausted), 0)
	assert.InDelta(t, 42, testutil.ToFloat64(m.KeyspaceAllocated), 0)
	assert.InDelta(t, 6955200, testutil.ToFloat64(m.KeyspaceCapacity), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ContactSubmissions.WithLabelValues("true")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RateLimited.WithLabelValues("finder")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RateLimitFallbacks.WithLabelValues("global")), 0)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveLookup(OutcomeReal, time.Second)
		m.ObserveAllocation(3)
		m.IncrementCollision(CollisionToken)
		m.IncrementExhausted()
		m.SetKeyspace(1, 2)
		m.IncrementContact(true)
		m.IncrementRateLimited("finder")
		m.IncrementRateLimitFallback("finder")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveAllocation(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "tagback_allocation_attempts")
}
