package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kartik-turing/repo-scanner-frontend/internal/config"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/apierror"
	"github.com/kartik-turing/repo-scanner-frontend/pkg/logger"
)

// visitorTTL is how long an idle client keeps its bucket.
const visitorTTL = 3 * time.Minute

// RateLimiter implements a per-IP token bucket limiter.
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	cleanup  time.Duration
	log      *logger.Logger
	now      func() time.Time
	done     chan struct{}
	stopped  chan struct{} // closed when the cleanup goroutine exits
	stopOnce sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing perSec requests per second with
// the given burst, and starts its cleanup goroutine. Call Stop to release it.
func NewRateLimiter(perSec float64, burst int, cleanup time.Duration, log *logger.Logger) *RateLimiter {
	if log == nil {
		log = logger.NewNop()
	}
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	if burst < 1 {
		burst = 1
	}
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(perSec),
		burst:    burst,
		cleanup:  cleanup,
		log:      log,
		now:      time.Now,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}

	go rl.cleanupVisitors()

	return rl
}

// Stop stops the cleanup goroutine and waits for it to exit.
// Safe to call multiple times.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.done)
	})
	<-rl.stopped
}

// Allow consumes one token for ip.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.getVisitor(ip).Allow()
}

// Visitors returns the number of tracked clients.
func (rl *RateLimiter) Visitors() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = rl.now()
	return v.limiter
}

func (rl *RateLimiter) cleanupVisitors() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()
	defer close(rl.stopped)

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.prune()
		}
	}
}

func (rl *RateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, ip)
		}
	}
}

// Middleware returns the rate limiting middleware. Rejections get a 429 in
// the JSON error envelope.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			limiter := rl.getVisitor(ip)

			remaining := int(math.Max(0, math.Floor(limiter.Tokens())-1))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !limiter.Allow() {
				rl.log.Warn("rate limit exceeded",
					"ip", ip,
					"path", r.URL.Path,
					"request_id", GetRequestID(r.Context()),
				)
				RecordSecurityEvent(SecurityEventRateLimited)
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter()))
				apierror.RateLimitExceeded().WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// retryAfter is the whole seconds until one token is back.
func (rl *RateLimiter) retryAfter() int {
	if rl.rate <= 0 {
		return 60
	}
	return int(math.Ceil(1 / float64(rl.rate)))
}

// RateLimitWithStop creates the global per-IP limiter and its stop function.
// A disabled config yields a pass-through middleware.
func RateLimitWithStop(cfg *config.RateLimitConfig, log *logger.Logger) (func(http.Handler) http.Handler, func()) {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }, func() {}
	}
	rl := NewRateLimiter(cfg.RequestsPerSec, cfg.Burst, cfg.CleanupInterval, log)
	return rl.Middleware(), rl.Stop
}

// LoginRateLimitWithStop creates the strict limiter for sign-in attempts.
func LoginRateLimitWithStop(cfg *config.RateLimitConfig, log *logger.Logger) (func(http.Handler) http.Handler, func()) {
	if !cfg.Enabled || cfg.LoginPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }, func() {}
	}
	rl := NewRateLimiter(float64(cfg.LoginPerMinute)/60.0, cfg.LoginBurst, cfg.CleanupInterval, log)
	return rl.Middleware(), rl.Stop
}

// clientIP returns the request's client address. chi's RealIP runs first
// and has already folded X-Real-IP / X-Forwarded-For into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
