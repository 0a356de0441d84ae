package fasttranslator

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies provider failures for retry decisions.
type ErrorKind int

const (
	// KindTransient is a temporary network or server failure (retried).
	KindTransient ErrorKind = iota
	// KindThrottled means the provider signalled the request rate was exceeded (retried).
	KindThrottled
	// KindAuth is an authentication/authorization failure (fatal, never retried).
	KindAuth
	// KindMalformed means the provider rejected the request as malformed (fatal).
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindThrottled:
		return "throttled"
	case KindAuth:
		return "auth"
	case KindMalformed:
		return "malformed"
	default:
		return "transient"
	}
}

// ValidationError is returned synchronously when a request is rejected
// before dispatch. It never causes cache or network side effects.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Message)
}

// ProviderError indicates a failure reported by the translate backend.
type ProviderError struct {
	Kind    ErrorKind
	Message string
	Cause   error
	// RetryAfter is the provider-suggested wait before retrying, when the
	// throttling response carried one. Zero means no suggestion.
	RetryAfter time.Duration
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error (%s): %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error (%s): %s", e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// ParseError indicates a provider response that was received but could not
// be interpreted. Parse failures are never cached.
type ParseError struct {
	Message string
	Raw     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// RateLimitError is surfaced when throttling persisted through every
// permitted retry attempt.
type RateLimitError struct {
	Attempts int
	Cause    error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *RateLimitError) Unwrap() error {
	return e.Cause
}

// TranslationError is the terminal failure for a dispatched request:
// transient errors that exhausted their retries, or uninterpretable
// responses.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("translation failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("translation failed: %s", e.Message)
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether an error may be retried. Only throttling and
// transient provider failures qualify; auth and malformed-request failures
// are fatal, and context errors are surfaced as-is.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Kind == KindThrottled || provErr.Kind == KindTransient
	}

	return false
}

// IsThrottled reports whether an error is a provider throttling signal.
func IsThrottled(err error) bool {
	var provErr *ProviderError
	return errors.As(err, &provErr) && provErr.Kind == KindThrottled
}
