// Per-client request limiting for endpoints that hit the database.
package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter allows each client a fixed number of requests per window. Windows start
// at a client's first request; idle clients are swept once per window.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	seen   map[string]*quota
	swept  time.Time
}

type quota struct {
	used  int
	start time.Time
}

// NewRateLimiter allows limit requests per client per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{limit: limit, window: window, now: time.Now, seen: make(map[string]*quota)}
}

// Allow spends one request for client. When the quota is used up it returns false
// and the time left until the client's window resets.
func (rl *RateLimiter) Allow(client string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.swept) >= rl.window {
		for k, q := range rl.seen {
			if now.Sub(q.start) >= rl.window {
				delete(rl.seen, k)
			}
		}
		rl.swept = now
	}

	q, ok := rl.seen[client]
	if !ok || now.Sub(q.start) >= rl.window {
		q = &quota{start: now}
		rl.seen[client] = q
	}
	if q.used >= rl.limit {
		return false, q.start.Add(rl.window).Sub(now)
	}
	q.used++
	return true, 0
}

// RateLimitMiddleware answers 429 with a Retry-After header once a client is over its quota.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.Allow(clientIP(r))
		if !ok {
			secs := int(wait/time.Second) + 1
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// clientIP prefers the first X-Forwarded-For hop, then the remote address without its port.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
