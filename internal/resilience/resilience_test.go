package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymori/ideascout/internal/agenterr"
)

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	attempts := 0
	result, err := Retry(context.Background(), func(context.Context) (string, error) {
		attempts++
		return "ok", nil
	}, RetryOptions{MaxRetries: 3, InitialDelay: time.Millisecond})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, attempts)
}

func TestRetryMakesAtMostMaxAttempts(t *testing.T) {
	attempts := 0
	failure := errors.New("transient")
	_, err := Retry(context.Background(), func(context.Context) (int, error) {
		attempts++
		return 0, failure
	}, RetryOptions{MaxRetries: 3, InitialDelay: time.Millisecond})

	assert.Equal(t, 3, attempts)
	// Last error is returned unchanged, never re-wrapped.
	assert.Same(t, failure, err)
}

func TestRetryRecoversAfterFailures(t *testing.T) {
	attempts := 0
	result, err := Retry(context.Background(), func(context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	}, RetryOptions{MaxRetries: 5, InitialDelay: time.Millisecond})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, attempts)
}

func TestRetryDelaySequenceNonDecreasing(t *testing.T) {
	var delays []time.Duration
	last := time.Now()
	attempts := 0

	_, err := Retry(context.Background(), func(context.Context) (int, error) {
		now := time.Now()
		if attempts > 0 {
			delays = append(delays, now.Sub(last))
		}
		last = now
		attempts++
		return 0, errors.New("always fails")
	}, RetryOptions{MaxRetries: 4, InitialDelay: 10 * time.Millisecond, Factor: 2, MaxDelay: 40 * time.Millisecond})

	require.Error(t, err)
	require.Len(t, delays, 3)
	for i := 1; i < len(delays); i++ {
		// Allow scheduler jitter but the configured sequence must not shrink.
		assert.GreaterOrEqual(t, delays[i]+5*time.Millisecond, delays[i-1],
			"delay %d (%s) should not be shorter than delay %d (%s)", i, delays[i], i-1, delays[i-1])
	}
}

func TestRetryIfStopsImmediately(t *testing.T) {
	attempts := 0
	dq := &agenterr.DataQualityError{Message: "malformed payload"}

	_, err := Retry(context.Background(), func(context.Context) (int, error) {
		attempts++
		return 0, dq
	}, RetryOptions{
		MaxRetries:   5,
		InitialDelay: time.Millisecond,
		RetryIf: func(err error) bool {
			var dqErr *agenterr.DataQualityError
			return !errors.As(err, &dqErr)
		},
	})

	assert.Equal(t, 1, attempts)
	assert.Same(t, dq, err)
}

func TestRetryOnRetryCallback(t *testing.T) {
	var reported []int
	_, _ = Retry(context.Background(), func(context.Context) (int, error) {
		return 0, errors.New("nope")
	}, RetryOptions{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		OnRetry:      func(_ error, attempt int) { reported = append(reported, attempt) },
	})

	assert.Equal(t, []int{1, 2}, reported)
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := Retry(ctx, func(context.Context) (int, error) {
		attempts++
		return 0, errors.New("transient")
	}, RetryOptions{MaxRetries: 10, InitialDelay: time.Second})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithTimeoutReturnsResult(t *testing.T) {
	result, err := WithTimeout(context.Background(), time.Second, "fast_op", func(context.Context) (string, error) {
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", result)
}

func TestWithTimeoutResolvesWithinDeadline(t *testing.T) {
	start := time.Now()
	_, err := WithTimeout(context.Background(), 100*time.Millisecond, "slow_op", func(ctx context.Context) (string, error) {
		select {
		case <-time.After(5 * time.Second):
			return "too late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	elapsed := time.Since(start)

	var toErr *agenterr.TimeoutError
	require.ErrorAs(t, err, &toErr)
	assert.Equal(t, "slow_op", toErr.Operation)
	assert.Equal(t, 100*time.Millisecond, toErr.Duration)
	// Resolves at the deadline, not at the operation's own settlement time.
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
}

func TestWithTimeoutCancelsDerivedContext(t *testing.T) {
	cancelled := make(chan struct{})
	_, err := WithTimeout(context.Background(), 50*time.Millisecond, "cooperative_op", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(cancelled)
		return 0, ctx.Err()
	})

	require.Error(t, err)
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("derived context was not cancelled on timeout")
	}
}

func TestWithTimeoutPropagatesOperationError(t *testing.T) {
	boom := errors.New("boom")
	_, err := WithTimeout(context.Background(), time.Second, "failing_op", func(context.Context) (int, error) {
		return 0, boom
	})

	assert.Same(t, boom, err)
}
