package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"github.com/trellis-http/trellis/pkg/common"
)

// RateLimitConfig defines configuration for rate limiting.
type RateLimitConfig struct {
	// Unique identifier for this rate limit bucket. Routes sharing a
	// BucketName share the same limits.
	BucketName string

	// Maximum number of requests allowed in the time window.
	Limit int

	// Time window for the rate limit.
	Window time.Duration

	// KeyFunc identifies the client a request counts against. Defaults to
	// the client IP (via ClientIPMiddleware when installed).
	KeyFunc func(*http.Request) string

	// Response to send when the rate limit is exceeded. If nil, a default
	// 429 Too Many Requests response is sent.
	ExceededHandler http.Handler
}

// RateLimiter decides whether a request identified by key is allowed under
// the given limit, returning the remaining budget and time until reset.
type RateLimiter interface {
	Allow(key string, limit int, window time.Duration) (allowed bool, remaining int, reset time.Duration)
}

// UberRateLimiter implements RateLimiter with a windowed counter for
// admission and go.uber.org/ratelimit leaky buckets to pace admitted
// requests evenly across the window.
type UberRateLimiter struct {
	mu      sync.Mutex
	pacers  map[string]ratelimit.Limiter
	windows map[string]*window
}

type window struct {
	start time.Time
	count int
}

// NewUberRateLimiter creates a new rate limiter.
func NewUberRateLimiter() *UberRateLimiter {
	return &UberRateLimiter{
		pacers:  make(map[string]ratelimit.Limiter),
		windows: make(map[string]*window),
	}
}

// Allow reports whether a request for key fits the limit. Admitted requests
// take a slot from the key's leaky bucket, smoothing bursts.
func (u *UberRateLimiter) Allow(key string, limit int, windowSize time.Duration) (bool, int, time.Duration) {
	if limit <= 0 {
		limit = 1
	}
	if windowSize <= 0 {
		windowSize = time.Second
	}

	u.mu.Lock()
	win, ok := u.windows[key]
	now := time.Now()
	if !ok || now.Sub(win.start) > windowSize {
		win = &window{start: now}
		u.windows[key] = win
	}
	win.count++
	count := win.count

	pacer, ok := u.pacers[key]
	if !ok {
		rps := int(float64(limit) / windowSize.Seconds())
		if rps < 1 {
			rps = 1
		}
		pacer = ratelimit.New(rps, ratelimit.WithoutSlack)
		u.pacers[key] = pacer
	}
	u.mu.Unlock()

	if count > limit {
		return false, 0, windowSize - now.Sub(win.start)
	}

	pacer.Take()
	return true, limit - count, windowSize - now.Sub(win.start)
}

// RateLimit creates a middleware that enforces rate limits, setting the
// X-RateLimit-* response headers and short-circuiting with 429 when the
// budget is exhausted.
func RateLimit(config *RateLimitConfig, limiter RateLimiter, logger *zap.Logger) common.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := ""
			if config.KeyFunc != nil {
				key = config.KeyFunc(r)
			}
			if key == "" {
				key = ClientIP(r)
			}
			if key == "" {
				key = r.RemoteAddr
			}

			bucketKey := config.BucketName + ":" + key
			allowed, remaining, reset := limiter.Allow(bucketKey, config.Limit, config.Window)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(reset).Unix(), 10))

			if !allowed {
				w.Header().Set("Retry-After", strconv.FormatInt(int64(reset.Seconds()), 10))

				logger.Warn("Rate limit exceeded",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("key", key),
					zap.Int("limit", config.Limit),
				)

				if config.ExceededHandler != nil {
					config.ExceededHandler.ServeHTTP(w, r)
					return
				}
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
