package webapi

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter provides per-client rate limiting.
type RateLimiter struct {
	mu          sync.Mutex
	clients     map[string]*rate.Limiter
	lastSeen    map[string]time.Time
	rate        rate.Limit
	burst       int
	idle        time.Duration
	lastCleanup time.Time
	now         func() time.Time
	trusted     map[string]bool
}

// NewRateLimiter allows perSecond requests per client with bursts of burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients:  make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		idle:     5 * time.Minute,
		now:      time.Now,
		trusted:  make(map[string]bool),
	}
}

// TrustProxies lets the given peer addresses name the client through
// X-Forwarded-For or X-Real-IP. Requests from any other peer are keyed on
// the connection address.
func (rl *RateLimiter) TrustProxies(addrs ...string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for _, a := range addrs {
		rl.trusted[a] = true
	}
}

func (rl *RateLimiter) isTrusted(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.trusted[addr]
}

// getLimiter returns the rate limiter for a client, creating one if needed.
// Clients idle for longer than rl.idle are dropped on the way.
func (rl *RateLimiter) getLimiter(clientIP string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastCleanup) > rl.idle {
		threshold := now.Add(-rl.idle)
		for ip, seen := range rl.lastSeen {
			if seen.Before(threshold) {
				delete(rl.clients, ip)
				delete(rl.lastSeen, ip)
			}
		}
		rl.lastCleanup = now
	}
	rl.lastSeen[clientIP] = now

	limiter, exists := rl.clients[clientIP]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.clients[clientIP] = limiter
	}
	return limiter
}

// Allow checks if a request from the given IP should be allowed.
func (rl *RateLimiter) Allow(clientIP string) bool {
	return rl.getLimiter(clientIP).Allow()
}

// Middleware returns an HTTP middleware that applies rate limiting.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(rl.clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "too many benchmark requests, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP keys a request on its peer address unless the peer is a trusted
// proxy, in which case the forwarding headers name the client.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !rl.isTrusted(host) {
		return host
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return host
}
