package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultThrottleBackoff is used when a provider throttles without a hint.
const defaultThrottleBackoff = 30 * time.Second

// RateLimiter paces generator requests with a token bucket and honours
// provider throttling by pausing all callers until a retry time.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerMinute calls with a burst of one.
// A non-positive rate disables token pacing; throttle backoff still applies.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60.0)
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordThrottle.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordThrottle pauses requests for the given duration.
// Call this when the provider answers 429.
func (r *RateLimiter) RecordThrottle(backoff time.Duration) {
	if backoff <= 0 {
		backoff = defaultThrottleBackoff
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if at := time.Now().Add(backoff); at.After(r.retryAt) {
		r.retryAt = at
	}
}
