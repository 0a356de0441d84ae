package fasttranslator

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy bounds how often and how patiently a failed dispatch attempt
// is repeated.
type RetryPolicy struct {
	MaxAttempts int           // Total attempts including the first
	BaseDelay   time.Duration // Delay before the first retry
	MaxDelay    time.Duration // Cap for the backoff
}

// DefaultRetryPolicy returns sensible defaults for retry behavior.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// NextDelay returns the backoff before retry number attempt (1-based).
// Delays grow exponentially and never decrease or exceed MaxDelay.
func (p RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BaseDelay * time.Duration(1<<(attempt-1))
	if delay > p.MaxDelay || delay <= 0 {
		delay = p.MaxDelay
	}
	return delay
}

// ShouldRetry reports whether another attempt is permitted after attempt
// attempts have failed with err. Throttling and transient failures retry
// up to the bound; everything else is fatal.
func (p RetryPolicy) ShouldRetry(attempt int, err error) bool {
	if attempt >= p.MaxAttempts {
		return false
	}
	return IsRetryable(err)
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes fn under policy, sleeping through clock between
// attempts. On exhaustion the last error is classified: persistent
// throttling becomes *RateLimitError, anything else *TranslationError.
func WithRetry[T any](ctx context.Context, policy RetryPolicy, clock Clock, fn RetryFunc[T]) (T, error) {
	var zero T
	if clock == nil {
		clock = SystemClock
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !policy.ShouldRetry(attempt, err) {
			break
		}

		delay := policy.NextDelay(attempt)
		// A throttling response may carry its own suggested wait.
		var provErr *ProviderError
		if errors.As(err, &provErr) && provErr.RetryAfter > delay {
			delay = provErr.RetryAfter
			if delay > policy.MaxDelay {
				delay = policy.MaxDelay
			}
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-clock.After(delay):
		}
	}

	if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
		return zero, lastErr
	}
	if IsThrottled(lastErr) {
		return zero, &RateLimitError{Attempts: policy.MaxAttempts, Cause: lastErr}
	}
	if !IsRetryable(lastErr) {
		return zero, lastErr
	}
	return zero, &TranslationError{Message: "retries exhausted", Cause: lastErr}
}
