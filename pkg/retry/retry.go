// Package retry implements a bounded retry policy with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTransient marks an error as worth retrying. Callers wrap upstream
// failures (rate limits, cold starts) with this sentinel so the default
// policy can distinguish them from permanent failures.
var ErrTransient = errors.New("transient failure")

// Transient wraps err so that errors.Is(err, ErrTransient) reports true.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// Policy describes how an operation is retried. The zero value is not
// usable; construct with NewPolicy or fill every field.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Delay is the wait before the second attempt. Each subsequent wait
	// doubles, capped at MaxDelay.
	Delay time.Duration

	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration

	// Retryable reports whether an error should be retried. When nil,
	// only errors wrapped with ErrTransient are retried.
	Retryable func(error) bool
}

// NewPolicy returns a Policy retrying ErrTransient errors.
func NewPolicy(maxAttempts int, delay, maxDelay time.Duration) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		Delay:       delay,
		MaxDelay:    maxDelay,
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, the attempt
// budget is exhausted, or ctx is done.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	retryable := p.Retryable
	if retryable == nil {
		retryable = func(err error) bool { return errors.Is(err, ErrTransient) }
	}

	delay := p.Delay
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
