package enrich

import (
	"context"
	"time"

	"marquee/internal/services"
)

// Retrier repeats transient failures with a linear backoff. Not-found and
// permanent errors pass through on the first attempt.
type Retrier struct {
	attempts int
	sleep    func(context.Context, time.Duration)
}

// NewRetrier creates a retrier making at most attempts total calls.
func NewRetrier(attempts int) *Retrier {
	if attempts < 1 {
		attempts = 1
	}
	return &Retrier{attempts: attempts, sleep: sleepContext}
}

// backoff returns the wait before the next attempt: 2s after the first
// failure, 4s after the second, and so on.
func backoff(attempt int) time.Duration {
	return time.Duration(attempt+1) * 2 * time.Second
}

// Do runs fn until it succeeds, fails non-transiently, or the attempts are
// exhausted. The last error is returned unmodified so callers can classify
// and log the original cause.
func (r *Retrier) Do(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(ctx)
		if lastErr == nil || !services.Retryable(lastErr) {
			return lastErr
		}
		if attempt < r.attempts-1 {
			r.sleep(ctx, backoff(attempt))
		}
	}
	return lastErr
}
