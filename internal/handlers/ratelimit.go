package handlers

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

const (
	rateLimitPerSecond = 5
	rateLimitBurst     = 10
)

var (
	limitersMu sync.Mutex
	limiters   = make(map[string]*rate.Limiter)
)

func limiterFor(ip string) *rate.Limiter {
	limitersMu.Lock()
	defer limitersMu.Unlock()

	l, ok := limiters[ip]
	if !ok {
		l = rate.NewLimiter(rateLimitPerSecond, rateLimitBurst)
		limiters[ip] = l
	}
	return l
}

// RateLimitMiddleware applies a per-client-IP token bucket to the public
// endpoints.
func RateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !limiterFor(ip).Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
