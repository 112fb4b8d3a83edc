package store

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RetryLimiter throttles retries against the record store with a
// token-bucket limiter, collapsed here to the single store the
// persistence adapter talks to, since there is only one downstream to
// protect.
type RetryLimiter struct {
	limiter *rate.Limiter
}

// NewRetryLimiter builds a limiter allowing ratePerSecond steady-state
// requests with a burst of burst.
func NewRetryLimiter(ratePerSecond float64, burst int) *RetryLimiter {
	return &RetryLimiter{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Wait blocks until a token is available or ctx is canceled.
func (r *RetryLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}
