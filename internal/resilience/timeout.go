package resilience

import (
	"context"
	"time"

	"github.com/ymori/ideascout/internal/agenterr"
)

// WithTimeout races fn against a deadline. If fn has not settled after d,
// the call returns a TimeoutError naming the operation and the derived
// context is cancelled so cooperative callees stop work. The result
// channel is buffered: an operation that ignores cancellation may still
// settle later, but its result is discarded rather than leaking a
// blocked goroutine.
func WithTimeout[T any](ctx context.Context, d time.Duration, operation string, fn func(context.Context) (T, error)) (T, error) {
	type outcome struct {
		value T
		err   error
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		value, err := fn(runCtx)
		done <- outcome{value: value, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	var zero T
	select {
	case out := <-done:
		return out.value, out.err
	case <-timer.C:
		cancel()
		return zero, agenterr.NewTimeoutError(operation, d)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
