package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/agentstation/dnmerge/internal/server/response"
)

// visitorTTL is how long an idle client's window is remembered.
const visitorTTL = 10 * time.Minute

// RateLimiter allows a fixed number of requests per client IP per window.
type RateLimiter struct {
	limit    int
	window   time.Duration
	visitors *gocache.Cache
	mu       sync.Mutex
	now      func() time.Time
	logger   *zerolog.Logger
}

// visitor tracks the current window of one client.
type visitor struct {
	mu     sync.Mutex
	tokens int
	reset  time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per minute per IP.
func NewRateLimiter(limit int, logger *zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		window:   time.Minute,
		visitors: gocache.New(visitorTTL, visitorTTL),
		now:      time.Now,
		logger:   logger,
	}
}

// visitor returns the state of ip, creating it on first sight.
func (rl *RateLimiter) visitor(ip string) *visitor {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if v, ok := rl.visitors.Get(ip); ok {
		return v.(*visitor)
	}
	v := &visitor{tokens: rl.limit, reset: rl.now().Add(rl.window)}
	rl.visitors.SetDefault(ip, v)
	return v
}

// Allow reports whether a request from ip fits in its current window.
func (rl *RateLimiter) Allow(ip string) bool {
	v := rl.visitor(ip)

	v.mu.Lock()
	defer v.mu.Unlock()

	if now := rl.now(); !now.Before(v.reset) {
		v.tokens = rl.limit
		v.reset = now.Add(rl.window)
	}
	if v.tokens == 0 {
		return false
	}
	v.tokens--
	return true
}

// RateLimit rejects requests over the limit with 429.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !rl.Allow(ip) {
				rl.logger.Warn().
					Str("ip", ip).
					Str("path", r.URL.Path).
					Msg("Rate limit exceeded")
				w.Header().Set("Retry-After", "60")
				response.RateLimited(w, "Too many requests. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the first X-Forwarded-For address, or the host part of
// RemoteAddr.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
