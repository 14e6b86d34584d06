// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/jasht/internal/platform/constants"
)

// # Rate Limiting

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per client IP token bucket.
type RateLimiter struct {
	limit rate.Limit
	burst int
	ttl   time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewRateLimiter builds a limiter allowing rps requests per second per IP
// with the given burst. Idle visitors are evicted until context is done.
func NewRateLimiter(context context.Context, rps float64, burst int) *RateLimiter {
	limiter := &RateLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		ttl:      constants.RateLimitClientTTL,
		visitors: make(map[string]*visitor),
	}
	go limiter.evictLoop(context, constants.RateLimitCleanupInterval)
	return limiter
}

// Handler rejects over-budget requests with 429 and a Retry-After hint.
func (limiter *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		reservation := limiter.visitorFor(RealIP(request)).Reserve()

		if !reservation.OK() {
			writeError(writer, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Rate limit exceeded")
			return
		}

		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			writer.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			writeError(writer, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Rate limit exceeded")
			return
		}

		next.ServeHTTP(writer, request)
	})
}

func (limiter *RateLimiter) visitorFor(ip string) *rate.Limiter {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	entry, found := limiter.visitors[ip]
	if !found {
		entry = &visitor{limiter: rate.NewLimiter(limiter.limit, limiter.burst)}
		limiter.visitors[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

func (limiter *RateLimiter) evictLoop(context context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-context.Done():
			return
		case now := <-ticker.C:
			limiter.evictIdle(now)
		}
	}
}

func (limiter *RateLimiter) evictIdle(now time.Time) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	for ip, entry := range limiter.visitors {
		if now.Sub(entry.lastSeen) > limiter.ttl {
			delete(limiter.visitors, ip)
		}
	}
}
