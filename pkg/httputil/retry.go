package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a transient failure (network error, 5xx response)
// that [Policy.Do] may attempt again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is wrapped in a RetryableError.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Policy bounds the retries of one operation.
type Policy struct {
	// Attempts is the total number of tries, at least 1.
	Attempts int
	// Delay is the wait before the second try; it doubles after each failure.
	Delay time.Duration
}

// DefaultPolicy tries 3 times, waiting 1s and then 2s.
var DefaultPolicy = Policy{Attempts: 3, Delay: time.Second}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// attempts are used up. Returns the last error, or ctx.Err() if ctx is
// cancelled while waiting.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
				delay *= 2
			}
		}
	}
	return lastErr
}

// Retry executes fn up to attempts times with exponential backoff.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return Policy{Attempts: attempts, Delay: delay}.Do(ctx, fn)
}

// RetryWithBackoff runs fn with [DefaultPolicy].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultPolicy.Do(ctx, fn)
}
