// Package ratelimit bounds how often a single client may send commands.
//
// Each client key gets its own token bucket. Buckets live in an expiring LRU
// so idle clients are forgotten and memory stays bounded however many
// connections come and go.
package ratelimit

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// ErrLimited is returned when a client exceeds its budget.
var ErrLimited = errors.New("rate limit exceeded")

const (
	maxClients = 1000
	idleTTL    = 5 * time.Minute
)

// Limiter is a per-key rate limiter. A nil *Limiter allows everything.
type Limiter struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

// New creates a limiter allowing requestsPerMin per key with the given burst.
// It returns nil when requestsPerMin is zero, which disables limiting.
func New(requestsPerMin, burst int) *Limiter {
	if requestsPerMin <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = max(1, requestsPerMin/10)
	}
	return &Limiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](maxClients, nil, idleTTL),
		rate:     rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    burst,
	}
}

// Allow consumes one token for key.
func (l *Limiter) Allow(key string) error {
	if l == nil {
		return nil
	}
	limiter, ok := l.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters.Add(key, limiter)
	}

	if !limiter.Allow() {
		return fmt.Errorf("%w for %s", ErrLimited, key)
	}
	return nil
}

// Forget drops the bucket of key, e.g. when a WebSocket client disconnects.
func (l *Limiter) Forget(key string) {
	if l == nil {
		return
	}
	l.limiters.Remove(key)
}
