package rpc

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"time"
)

// RetryConfig configures per-endpoint retry behavior.
type RetryConfig struct {
	MaxAttempts int           // attempts per endpoint, including the first
	BaseDelay   time.Duration // delay before the first retry
	MaxDelay    time.Duration // cap on any single delay
}

// DefaultRetryConfig returns 3 attempts per endpoint with 250ms, 500ms backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   250 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

// retryableError marks a transport failure worth retrying. after, when set,
// is the server's Retry-After hint.
type retryableError struct {
	err   error
	after time.Duration
}

func (e *retryableError) Error() string { return e.err.Error() }

func (e *retryableError) Unwrap() error { return e.err }

func markRetryable(err error, after time.Duration) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err, after: after}
}

// IsRetryable reports whether err came from a transient transport failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var re *retryableError
	return errors.As(err, &re) || errors.Is(err, context.DeadlineExceeded)
}

// retry runs op until it succeeds, fails with a non-retryable error, or the
// attempts run out. onRetry is called before each repeated attempt.
func retry[T any](ctx context.Context, cfg RetryConfig, onRetry func(error), op func() (T, error)) (T, error) {
	var result T
	var err error

	attempts := max(cfg.MaxAttempts, 1)
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			onRetry(err)
		}

		result, err = op()
		if err == nil || !IsRetryable(err) || ctx.Err() != nil {
			return result, err
		}

		if attempt < attempts-1 {
			delay := calculateDelay(attempt, cfg.BaseDelay, cfg.MaxDelay)
			var re *retryableError
			if errors.As(err, &re) && re.after > delay {
				delay = min(re.after, cfg.MaxDelay)
			}

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return result, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return result, err
}

// calculateDelay returns exponential backoff with jitter in [d/2, d).
func calculateDelay(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	delay := baseDelay * (1 << attempt)
	if delay > maxDelay || delay <= 0 {
		delay = maxDelay
	}
	half := delay / 2
	if half <= 0 {
		return delay
	}
	return half + rand.N(half) //nolint:gosec // G404: jitter does not require cryptographic randomness
}

// parseRetryAfter parses a Retry-After header in seconds.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
