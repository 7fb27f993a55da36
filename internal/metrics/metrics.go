// AngelaMos | 2026
// metrics.go

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tagback"

const (
	OutcomeReal     = "real"
	OutcomeMissing  = "missing"
	OutcomeNotFound = "not_found"
	OutcomeInactive = "inactive"
	OutcomeExpired  = "expired"
	OutcomeFault    = "fault"
)

const (
	CollisionIdentifier = "identifier"
	CollisionToken      = "token"
	CollisionPattern    = "pattern"
	CollisionWrite      = "write"
)

// Metrics is safe to use through a nil pointer; every recorder is a no-op
// in that case so components can be built without a registry in tests.
type Metrics struct {
	LookupsTotal         *prometheus.CounterVec
	LookupDuration       prometheus.Histogram
	AllocationAttempts   prometheus.Histogram
	AllocationCollisions *prometheus.CounterVec
	AllocationExhausted  prometheus.Counter
	KeyspaceAllocated    prometheus.Gauge
	KeyspaceCapacity     prometheus.Gauge
	ContactSubmissions   *prometheus.CounterVec
	RateLimited          *prometheus.CounterVec
	RateLimitFallbacks   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Total number of identifier lookups by internal outcome",
		}, []string{"outcome"}),
		LookupDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Time spent resolving an identifier lookup",
			Buckets:   prometheus.DefBuckets,
		}),
		AllocationAttempts: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "allocation_attempts",
			Help:      "Attempts needed to allocate an identifier and token pair",
			Buckets:   []float64{1, 2, 3, 5, 10, 25, 50, 100},
		}),
		AllocationCollisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_collisions_total",
			Help:      "Rejected allocation candidates by reason",
		}, []string{"kind"}),
		AllocationExhausted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_exhausted_total",
			Help:      "Allocations that hit the attempt ceiling",
		}),
		KeyspaceAllocated: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "keyspace_allocated",
			Help:      "Identifiers currently allocated",
		}),
		KeyspaceCapacity: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "keyspace_capacity",
			Help:      "Theoretical number of valid identifiers",
		}),
		ContactSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_submissions_total",
			Help:      "Contact form submissions by whether a notification was queued",
		}, []string{"delivered"}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_rejections_total",
			Help:      "Requests rejected by a rate limiter scope",
		}, []string{"scope"}),
		RateLimitFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_local_fallbacks_total",
			Help:      "Rate limit decisions made locally because redis was unavailable",
		}, []string{"scope"}),
		gatherer: reg,
	}
}

func (m *Metrics) ObserveLookup(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(outcome).Inc()
	m.LookupDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveAllocation(attempts int) {
	if m == nil {
		return
	}
	m.AllocationAttempts.Observe(float64(attempts))
}

func (m *Metrics) IncrementCollision(kind string) {
	if m == nil {
		return
	}
	m.AllocationCollisions.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementExhausted() {
	if m == nil {
		return
	}
	m.AllocationExhausted.Inc()
}

func (m *Metrics) SetKeyspace(allocated, capacity int64) {
	if m == nil {
		return
	}
	m.KeyspaceAllocated.Set(float64(allocated))
	m.KeyspaceCapacity.Set(float64(capacity))
}

func (m *Metrics) IncrementContact(delivered bool) {
	if m == nil {
		return
	}
	m.ContactSubmissions.WithLabelValues(strconv.FormatBool(delivered)).Inc()
}

func (m *Metrics) IncrementRateLimited(scope string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(scope).Inc()
}

func (m *Metrics) IncrementRateLimitFallback(scope string) {
	if m == nil {
		return
	}
	m.RateLimitFallbacks.WithLabelValues(scope).Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
