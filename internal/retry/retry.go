// Package retry provides a small exponential-backoff combinator,
// independent of any HTTP client.
package retry

import (
	"context"
	"time"
)

// Policy defines the backoff parameters for an operation.
type Policy struct {
	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the doubling backoff.
	MaxDelay time.Duration

	// MaxAttempts is the total number of attempts, the first included.
	MaxAttempts int
}

// Delay computes the wait after the given zero-based attempt:
// BaseDelay doubled per attempt, capped at MaxDelay.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := p.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay || delay < 0 {
			return p.MaxDelay
		}
	}
	if delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// SleepFunc pauses for the given duration. Tests substitute a recorder.
type SleepFunc func(time.Duration)

// Do invokes fn until it succeeds, the error is not retryable, or the
// policy's attempts are exhausted; the last error is returned in that
// case. sleep may be nil, defaulting to time.Sleep. Cancellation of ctx
// is honored between attempts.
func Do(
	ctx context.Context,
	policy Policy,
	sleep SleepFunc,
	retryable func(error) bool,
	fn func(ctx context.Context) error,
) error {
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			sleep(policy.Delay(attempt - 1))
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}
