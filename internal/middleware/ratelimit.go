// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/tagback/internal/core"
)

const (
	ScopeGlobal = "global"
	ScopeFinder = "finder"
)

// RateLimitObserver receives limiter decisions. *metrics.Metrics satisfies it.
type RateLimitObserver interface {
	IncrementRateLimited(scope string)
	IncrementRateLimitFallback(scope string)
}

type RateLimitConfig struct {
	// Scope namespaces the redis keys so a tight finder budget never
	// consumes the global one.
	Scope    string
	Limit    redis_rate.Limit
	ClientID func(*http.Request) string
	Bypass   func(*http.Request) bool
	Observer RateLimitObserver
	Logger   *slog.Logger
}

// RateLimiter counts in redis and falls back to per-process buckets while
// redis is unreachable. No request passes unthrottled.
type RateLimiter struct {
	limiter  *redis_rate.Limiter
	local    *localBuckets
	config   RateLimitConfig
	degraded atomic.Bool
}

func NewRateLimiter(rdb redis.UniversalClient, cfg RateLimitConfig) *RateLimiter {
	if cfg.Scope == "" {
		cfg.Scope = ScopeGlobal
	}
	if cfg.ClientID == nil {
		cfg.ClientID = ClientIP
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &RateLimiter{
		limiter: redis_rate.NewLimiter(rdb),
		local:   newLocalBuckets(time.Now),
		config:  cfg,
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.config.Bypass != nil && rl.config.Bypass(r) {
			next.ServeHTTP(w, r)
			return
		}

		res := rl.allow(r.Context(), rl.key(r))
		setRateLimitHeaders(w, res, rl.config.Limit)

		if res.Allowed == 0 {
			if rl.config.Observer != nil {
				rl.config.Observer.IncrementRateLimited(rl.config.Scope)
			}
			writeRateLimitExceeded(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) key(r *http.Request) string {
	return "ratelimit:" + rl.config.Scope + ":" + rl.config.ClientID(r)
}

func (rl *RateLimiter) allow(ctx context.Context, key string) *redis_rate.Result {
	res, err := rl.limiter.Allow(ctx, key, rl.config.Limit)
	if err == nil {
		if rl.degraded.CompareAndSwap(true, false) {
			rl.config.Logger.InfoContext(ctx, "rate limiter using redis again",
				"scope", rl.config.Scope,
			)
		}
		return res
	}

	if rl.degraded.CompareAndSwap(false, true) {
		rl.config.Logger.WarnContext(ctx, "rate limiter fell back to local buckets",
			"scope", rl.config.Scope,
			"error", err,
		)
	}
	if rl.config.Observer != nil {
		rl.config.Observer.IncrementRateLimitFallback(rl.config.Scope)
	}

	return rl.local.allow(key, rl.config.Limit)
}

// ClientIP identifies the caller by the hop the edge proxy appended to
// X-Forwarded-For, then X-Real-IP, then the socket peer.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		if ip := strings.TrimSpace(hops[len(hops)-1]); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))

	h.Set("RateLimit-Policy", fmt.Sprintf(`%d;w=%d`, limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit", fmt.Sprintf(`%d;t=%d`, res.Remaining, int(res.ResetAfter.Seconds())))
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := max(int(res.RetryAfter.Seconds()), 1)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSON(w, http.StatusTooManyRequests, core.Response{
		Success: false,
		Error: &core.ErrorBody{
			Code:    "RATE_LIMITED",
			Message: fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfter),
		},
	})
}

const (
	bucketSweepInterval = 5 * time.Minute
	bucketIdleTTL       = 10 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localBuckets mirrors the redis GCRA budget with token buckets held in
// memory. Idle buckets are swept on the request path, so no goroutine
// outlives the limiter.
type localBuckets struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

func newLocalBuckets(now func() time.Time) *localBuckets {
	return &localBuckets{
		buckets:   make(map[string]*bucket),
		lastSweep: now(),
		now:       now,
	}
}

func (l *localBuckets) allow(key string, limit redis_rate.Limit) *redis_rate.Result {
	res := &redis_rate.Result{Limit: limit, RetryAfter: -1}
	if limit.Rate <= 0 || limit.Period <= 0 {
		res.RetryAfter = limit.Period
		return res
	}
	interval := limit.Period / time.Duration(limit.Rate)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= bucketSweepInterval {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(interval), limit.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	if b.limiter.AllowN(now, 1) {
		res.Allowed = 1
	}

	tokens := b.limiter.TokensAt(now)
	res.Remaining = max(int(tokens), 0)
	res.ResetAfter = time.Duration((float64(limit.Burst) - tokens) * float64(interval))
	if res.Allowed == 0 {
		res.RetryAfter = time.Duration((1 - tokens) * float64(interval))
	}

	return res
}

func (l *localBuckets) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > bucketIdleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return Per(rate, burst, time.Minute)
}

func Per(rate, burst int, period time.Duration) redis_rate.Limit {
	if period <= 0 {
		period = time.Minute
	}
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: period,
	}
}
