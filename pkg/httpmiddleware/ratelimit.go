package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the sliding window rate limiter.
type RateLimitConfig struct {
	// Max is the number of requests a caller may make per window.
	Max int
	// Window is the length of one counting window.
	Window time.Duration
	// TrustProxy takes the caller address from X-Forwarded-For or X-Real-IP.
	// Leave it off unless a proxy in front of the server overwrites them.
	TrustProxy bool
	// Exempt paths bypass the limiter.
	Exempt []string
	// Now defaults to time.Now.
	Now func() time.Time
}

// counter holds the request counts of the current aligned window and the
// one before it.
type counter struct {
	start time.Time
	prev  int
	curr  int
}

// advance moves c to the window starting at start.
func (c *counter) advance(start time.Time, size time.Duration) {
	switch {
	case start.Equal(c.start):
	case start.Equal(c.start.Add(size)):
		c.prev, c.curr = c.curr, 0
		c.start = start
	default:
		c.prev, c.curr = 0, 0
		c.start = start
	}
}

// estimate weights the previous window by the share of it still inside the
// sliding window ending at now.
func (c *counter) estimate(now time.Time, size time.Duration) float64 {
	elapsed := now.Sub(c.start).Seconds() / size.Seconds()
	return float64(c.prev)*math.Max(0, 1-elapsed) + float64(c.curr)
}

// RateLimiter enforces a per-caller sliding window limit.
type RateLimiter struct {
	cfg    RateLimitConfig
	exempt map[string]struct{}

	mu       sync.Mutex
	counters map[string]*counter
}

// NewRateLimiter returns a limiter. Call Run to evict idle callers.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	exempt := make(map[string]struct{}, len(cfg.Exempt))
	for _, p := range cfg.Exempt {
		exempt[p] = struct{}{}
	}
	return &RateLimiter{
		cfg:      cfg,
		exempt:   exempt,
		counters: make(map[string]*counter),
	}
}

// take counts one request for key if it fits in the window.
func (l *RateLimiter) take(key string, now time.Time) (remaining int, resetAt time.Time, ok bool) {
	size := l.cfg.Window
	start := now.Truncate(size)

	l.mu.Lock()
	defer l.mu.Unlock()

	c, found := l.counters[key]
	if !found {
		c = &counter{start: start}
		l.counters[key] = c
	}
	c.advance(start, size)
	resetAt = start.Add(size)

	if c.estimate(now, size) >= float64(l.cfg.Max) {
		return 0, resetAt, false
	}
	c.curr++
	return max(0, int(float64(l.cfg.Max)-c.estimate(now, size))), resetAt, true
}

// sweep drops callers idle for two full windows.
func (l *RateLimiter) sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int
	for key, c := range l.counters {
		if now.Sub(c.start) >= 2*l.cfg.Window {
			delete(l.counters, key)
			n++
		}
	}
	return n
}

// Run sweeps idle callers once per window until ctx is done.
func (l *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.Window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep(l.cfg.Now())
		}
	}
}

// Middleware counts callers by address and answers 429 with the failure
// envelope once one is over the limit.
func (l *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, skip := l.exempt[r.URL.Path]; skip || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if !l.Admit(w, "ip:"+clientIP(r, l.cfg.TrustProxy)) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Admit counts one request for key and sets the X-RateLimit-* headers. Over
// the limit it writes the 429 response and returns false. Keys must identify
// a caller the server has already verified or observed, never a value the
// caller picks freely.
func (l *RateLimiter) Admit(w http.ResponseWriter, key string) bool {
	now := l.cfg.Now()
	remaining, resetAt, ok := l.take(key, now)

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Max))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

	if !ok {
		wait := math.Ceil(max(0, resetAt.Sub(now).Seconds()))
		h.Set("Retry-After", strconv.Itoa(int(wait)))
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	}
	return ok
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
