// Package agent provides the execution wrapper shared by every pipeline
// stage: progress bookkeeping, a stage-wide deadline, and conversion of
// failures into the typed error taxonomy. Concrete stages expose a
// Run method returning a StageResult; the runtime guarantees the result
// and the progress log agree about what happened.
package agent

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ymori/ideascout/internal/agenterr"
	"github.com/ymori/ideascout/internal/progress"
	"github.com/ymori/ideascout/internal/resilience"
)

// DefaultStageTimeout bounds one stage invocation end to end.
const DefaultStageTimeout = 10 * time.Minute

// StageResult is the uniform envelope every stage execution produces.
// Success and Error are mutually exclusive: Success implies Data is set
// and Error empty, and vice versa. Err carries the typed error for
// callers that re-raise instead of inspecting the envelope.
type StageResult[T any] struct {
	Success      bool           `json:"success"`
	Data         T              `json:"data,omitempty"`
	Error        string         `json:"error,omitempty"`
	ErrorDetails map[string]any `json:"error_details,omitempty"`
	Err          error          `json:"-"`
}

// Runner wraps stage bodies with progress reporting and a stage-wide
// timeout. One Runner per stage kind; it is safe for concurrent use.
type Runner struct {
	name     string
	reporter *progress.Reporter
	timeout  time.Duration
}

// NewRunner creates a Runner for the named stage. A zero timeout uses
// DefaultStageTimeout.
func NewRunner(name string, reporter *progress.Reporter, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultStageTimeout
	}
	return &Runner{name: name, reporter: reporter, timeout: timeout}
}

// Name returns the stage name used in progress records.
func (r *Runner) Name() string {
	return r.name
}

// Reporter returns the progress reporter so stage bodies can emit
// intermediate records.
func (r *Runner) Reporter() *progress.Reporter {
	return r.reporter
}

// Run executes a stage body under the runner's deadline.
//
// It emits a "started" record at 0%, runs body with the timeout policy,
// then emits either a "completed" record at 100% or an "error" record
// carrying the classified error's message. Failures are never hidden:
// the envelope carries both the human-readable message and the typed
// error for re-raising.
func Run[T any](ctx context.Context, r *Runner, sessionID uuid.UUID, body func(context.Context) (T, error)) StageResult[T] {
	start := time.Now()
	r.reporter.Report(ctx, sessionID, r.name, 0, "Starting...", progress.StatusStarted)

	data, err := resilience.WithTimeout(ctx, r.timeout, r.name, body)
	duration := time.Since(start)

	if err != nil {
		typed := agenterr.Classify(err)
		log.Printf("[%s] failed after %s: %v", r.name, duration, typed)
		r.reporter.Report(ctx, sessionID, r.name, 0, "Error: "+typed.Error(), progress.StatusError)
		return StageResult[T]{
			Success:      false,
			Error:        typed.Error(),
			ErrorDetails: agenterr.Details(typed),
			Err:          typed,
		}
	}

	log.Printf("[%s] completed in %s", r.name, duration)
	r.reporter.Report(ctx, sessionID, r.name, 100, "Completed", progress.StatusCompleted)
	return StageResult[T]{Success: true, Data: data}
}

// CallRemote invokes a remote call with bounded retries. Data-quality
// failures are raised immediately (retrying an unreliable parse rarely
// helps). On exhaustion, untyped and transport failures are wrapped as
// an APIError naming the operation; already-typed errors pass through
// so the retry policy never masks the failure kind.
func CallRemote[T any](ctx context.Context, fn func(context.Context) (T, error), maxRetries int, operation string) (T, error) {
	result, err := resilience.Retry(ctx, fn, resilience.RetryOptions{
		MaxRetries: maxRetries,
		RetryIf: func(err error) bool {
			var dqErr *agenterr.DataQualityError
			return !errors.As(err, &dqErr)
		},
		OnRetry: func(err error, attempt int) {
			log.Printf("retrying %s (attempt %d/%d): %v", operation, attempt, maxRetries, err)
		},
	})
	if err == nil {
		return result, nil
	}

	var dqErr *agenterr.DataQualityError
	var toErr *agenterr.TimeoutError
	if errors.As(err, &dqErr) || errors.As(err, &toErr) {
		return result, err
	}

	var apiErr *agenterr.APIError
	if errors.As(err, &apiErr) {
		return result, apiErr
	}

	return result, agenterr.NewAPIError(
		"failed to complete "+operation,
		agenterr.CodeAPICallFailed,
		500,
		map[string]any{"operation": operation, "original_error": err.Error()},
	)
}
