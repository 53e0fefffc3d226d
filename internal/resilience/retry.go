// Package resilience provides the retry and timeout policies applied
// around remote calls and stage bodies.
package resilience

import (
	"context"
	"time"
)

// Default retry parameters, matching the stage runtime's remote-call
// budget: at most 3 attempts with 1s/2s backoff capped at 10s.
const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = time.Second
	DefaultFactor       = 2.0
	DefaultMaxDelay     = 10 * time.Second
)

// RetryOptions configures the retry policy.
type RetryOptions struct {
	MaxRetries   int           // total attempts, 1-indexed (3 means at most 3 calls)
	InitialDelay time.Duration // delay before the second attempt
	Factor       float64       // multiplier applied to the delay each attempt
	MaxDelay     time.Duration // ceiling for the delay sequence
	// RetryIf decides whether a failure is worth retrying. When nil all
	// failures are retried. Returning false stops immediately and the
	// error is returned unchanged.
	RetryIf func(error) bool
	// OnRetry is invoked before each wait, with the failed attempt number.
	OnRetry func(err error, attempt int)
}

func (o *RetryOptions) withDefaults() RetryOptions {
	out := *o
	if out.MaxRetries <= 0 {
		out.MaxRetries = DefaultMaxRetries
	}
	if out.InitialDelay <= 0 {
		out.InitialDelay = DefaultInitialDelay
	}
	if out.Factor < 1 {
		out.Factor = DefaultFactor
	}
	if out.MaxDelay <= 0 {
		out.MaxDelay = DefaultMaxDelay
	}
	return out
}

// Retry invokes fn up to MaxRetries times, waiting between attempts with
// exponential backoff: min(InitialDelay × Factor^(attempt−1), MaxDelay).
// The delay sequence is monotonically non-decreasing. On final failure
// the last error is returned unchanged, never re-wrapped. The wait
// honors ctx so a stage timeout also stops outstanding attempts.
func Retry[T any](ctx context.Context, fn func(context.Context) (T, error), opts RetryOptions) (T, error) {
	o := opts.withDefaults()

	var zero T
	var lastErr error
	delay := o.InitialDelay

	for attempt := 1; attempt <= o.MaxRetries; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == o.MaxRetries {
			break
		}
		if o.RetryIf != nil && !o.RetryIf(err) {
			break
		}
		if o.OnRetry != nil {
			o.OnRetry(err, attempt)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * o.Factor)
		if delay > o.MaxDelay {
			delay = o.MaxDelay
		}
	}

	return zero, lastErr
}
