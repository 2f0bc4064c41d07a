package worker

import (
	"context"

	"golang.org/x/time/rate"
)

// OracleLimiter throttles outbound oracle traffic across all workers so a
// batch run does not trip provider rate limits.
type OracleLimiter struct {
	limiter *rate.Limiter
}

// NewOracleLimiter creates a limiter allowing requestsPerSecond with the
// given burst.
func NewOracleLimiter(requestsPerSecond float64, burst int) *OracleLimiter {
	if burst <= 0 {
		burst = 5
	}
	return &OracleLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a request slot is available or the context ends.
func (l *OracleLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed right now without waiting.
func (l *OracleLimiter) Allow() bool {
	return l.limiter.Allow()
}
