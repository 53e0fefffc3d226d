// Package agenterr defines the closed error taxonomy shared by every
// agent in the pipeline. Remote-call failures, data-shape failures, and
// deadline overruns each get their own kind so callers can act on them
// instead of string-matching messages.
package agenterr

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Error codes returned to the HTTP layer.
const (
	CodeAPICallFailed    = "API_CALL_FAILED"
	CodeDataQualityError = "DATA_QUALITY_ERROR"
	CodeTimeoutError     = "TIMEOUT_ERROR"
	CodeInternalError    = "INTERNAL_ERROR"
)

// APIError indicates a remote service responded with a failure or was
// unreachable.
type APIError struct {
	Message    string
	Code       string
	StatusCode int
	Details    map[string]any
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates an APIError with the given message and code.
// StatusCode defaults to 500 when zero.
func NewAPIError(message, code string, statusCode int, details map[string]any) *APIError {
	if statusCode == 0 {
		statusCode = 500
	}
	if code == "" {
		code = CodeAPICallFailed
	}
	return &APIError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Details:    details,
	}
}

// DataQualityError indicates a remote service responded successfully but
// the payload failed a structural or semantic check. These are never
// retried; a malformed payload rarely improves on a second attempt.
type DataQualityError struct {
	Message string
	Source  string
	Details map[string]any
}

func (e *DataQualityError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s (source: %s)", e.Message, e.Source)
	}
	return e.Message
}

// TimeoutError indicates an operation did not settle within its deadline.
type TimeoutError struct {
	Message   string
	Duration  time.Duration
	Operation string
}

func (e *TimeoutError) Error() string {
	return e.Message
}

// NewTimeoutError creates a TimeoutError for the named operation.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		Message:   fmt.Sprintf("operation %q timed out after %s", operation, duration),
		Duration:  duration,
		Operation: operation,
	}
}

// UnclassifiedError wraps any failure that does not fit the other kinds.
type UnclassifiedError struct {
	Message string
	Cause   error
}

func (e *UnclassifiedError) Error() string {
	return e.Message
}

func (e *UnclassifiedError) Unwrap() error {
	return e.Cause
}

// Classify maps an arbitrary error into the taxonomy. Errors that are
// already typed pass through unchanged; context deadline expiry becomes
// a TimeoutError; everything else is wrapped as UnclassifiedError.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var dqErr *DataQualityError
	if errors.As(err, &dqErr) {
		return dqErr
	}
	var toErr *TimeoutError
	if errors.As(err, &toErr) {
		return toErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Message: err.Error()}
	}

	return &UnclassifiedError{Message: err.Error(), Cause: err}
}

// Response is the error shape the HTTP layer echoes to clients.
type Response struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Format converts a typed error into the response shape. Untyped errors
// are classified first so no code path produces a generic body.
func Format(err error) Response {
	switch e := Classify(err).(type) {
	case *APIError:
		return Response{Code: e.Code, Message: e.Message, Details: e.Details}
	case *DataQualityError:
		details := map[string]any{}
		for k, v := range e.Details {
			details[k] = v
		}
		if e.Source != "" {
			details["source"] = e.Source
		}
		return Response{Code: CodeDataQualityError, Message: e.Message, Details: details}
	case *TimeoutError:
		return Response{
			Code:    CodeTimeoutError,
			Message: e.Message,
			Details: map[string]any{
				"operation":  e.Operation,
				"timeout_ms": e.Duration.Milliseconds(),
			},
		}
	default:
		return Response{Code: CodeInternalError, Message: err.Error()}
	}
}

// Details extracts the structured detail blob from a typed error, or nil.
func Details(err error) map[string]any {
	switch e := Classify(err).(type) {
	case *APIError:
		return e.Details
	case *DataQualityError:
		return e.Details
	case *TimeoutError:
		return map[string]any{
			"operation":  e.Operation,
			"timeout_ms": e.Duration.Milliseconds(),
		}
	default:
		return nil
	}
}
