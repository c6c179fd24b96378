/*
Package limiter provides per-client rate limiting based on IP addresses.

It uses the token bucket algorithm (rate.Limiter) for each client address and runs a
cleanup goroutine that drops idle limiters until its context is cancelled.
*/
package limiter

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"moonhub/internal/pkg/errs"
	"moonhub/internal/pkg/logx"
	"moonhub/internal/pkg/resp"

	"golang.org/x/time/rate"
)

// cleanupInterval is how often idle limiters are dropped.
const cleanupInterval = 3 * time.Minute

// IPRateLimiter keeps one token bucket per client IP address.
type IPRateLimiter struct {
	name string

	mu     sync.RWMutex
	limits map[string]*rate.Limiter

	r rate.Limit
	b int
}

// NewIPRateLimiter creates a limiter allowing r events per second with burst b
// per IP. The cleanup loop stops when ctx is done.
func NewIPRateLimiter(ctx context.Context, name string, r rate.Limit, b int) *IPRateLimiter {
	i := &IPRateLimiter{
		name:   name,
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
	}

	go i.cleanUpVisitors(ctx)

	return i
}

// GetLimiter returns the limiter for ip, creating it with double-checked locking.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.RLock()
	limiter, exists := i.limits[ip]
	i.mu.RUnlock()

	if !exists {
		i.mu.Lock()
		limiter, exists = i.limits[ip]
		if !exists {
			limiter = rate.NewLimiter(i.r, i.b)
			i.limits[ip] = limiter
		}
		i.mu.Unlock()
	}

	return limiter
}

// Allow reports whether the request's client may proceed now.
func (i *IPRateLimiter) Allow(r *http.Request) bool {
	return i.GetLimiter(ClientIP(r)).Allow()
}

// Len returns the number of tracked clients.
func (i *IPRateLimiter) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.limits)
}

// Sweep drops limiters whose bucket is full again, i.e. clients idle long enough to refill.
func (i *IPRateLimiter) Sweep(now time.Time) int {
	i.mu.Lock()
	defer i.mu.Unlock()

	count := 0
	for ip, limiter := range i.limits {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(i.limits, ip)
			count++
		}
	}
	return count
}

func (i *IPRateLimiter) cleanUpVisitors(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed := i.Sweep(now)
			logx.Debug("Rate limiter cleanup finished",
				"limiter", i.name,
				"removed", removed,
				"remaining", i.Len(),
			)
		}
	}
}

// Middleware rejects requests over the limit with ErrRateLimitExceeded (HTTP 429).
func (i *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !i.Allow(r) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClientIP extracts the host part of r.RemoteAddr (set by middleware.RealIP upstream).
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	if ip == "" {
		ip = "unknown_ip"
	}
	return ip
}
