package upload

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Backoff returns the wait after the given number of failed attempts
type Backoff func(failed int) time.Duration

// ConstantBackoff always waits d
func ConstantBackoff(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// ExponentialBackoff waits base, then doubles the wait after every failure, up to limit.
// The wait never drops below base, even when limit is lower.
func ExponentialBackoff(base, limit time.Duration) Backoff {
	limit = max(limit, base)
	return func(failed int) time.Duration {
		wait := base
		for i := 1; i < failed && wait < limit; i++ {
			wait *= 2
		}
		if wait > limit {
			return limit
		}
		return wait
	}
}

// RetryPolicy bounds how many times an operation is attempted
type RetryPolicy struct {
	Attempts  int
	Backoff   Backoff
	Retryable func(error) bool
}

// Do runs fn until it succeeds, the attempts are spent, the error is not
// retryable or ctx is done. The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error, onRetry func(attempt int, err error, wait time.Duration)) error {
	attempts := max(p.Attempts, 1)

	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		if attempt >= attempts || ctx.Err() != nil {
			return err
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}

		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		if onRetry != nil {
			onRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry interrupted: %w", errors.Join(ctx.Err(), err))
		case <-timer.C:
		}
	}
}
