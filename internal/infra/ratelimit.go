package infra

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter spaces out requests to one upstream host.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows n requests per window, bursting up to n.
// n <= 0 disables limiting.
func NewRateLimiter(n int, window time.Duration) *RateLimiter {
	if n <= 0 || window <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(window/time.Duration(n)), n)}
}

// Wait blocks until a request may proceed or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed now, consuming a token if so.
func (rl *RateLimiter) Allow() bool {
	return rl.limiter.Allow()
}
