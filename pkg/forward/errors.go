package forward

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrDownstreamClient matches backend 4xx responses.
	ErrDownstreamClient = errors.New("downstream client error")

	// ErrDownstreamServer matches backend 5xx responses and transport failures.
	ErrDownstreamServer = errors.New("downstream server error")

	// ErrTimeout matches calls that exceeded their deadline.
	ErrTimeout = errors.New("downstream timeout")

	// ErrBodyNotAllowed is returned when an opaque body is sent with a
	// bodyless method.
	ErrBodyNotAllowed = errors.New("method cannot carry an opaque body")

	// ErrResponseTooLarge is the cause of a DownstreamServerError when the
	// backend body exceeds MaxResponseBytes.
	ErrResponseTooLarge = errors.New("backend response too large")
)

// maxMessageBytes bounds how much of a backend body is quoted in an error.
const maxMessageBytes = 512

// DownstreamClientError represents a 4xx response from the backend.
type DownstreamClientError struct {
	// StatusCode is the backend HTTP status
	StatusCode int

	// Body is the backend response body
	Body []byte
}

// Error implements the error interface.
func (e *DownstreamClientError) Error() string {
	return fmt.Sprintf("downstream %d error: %s", e.StatusCode, message(e.Body))
}

// Is implements error matching for errors.Is().
func (e *DownstreamClientError) Is(target error) bool {
	return target == ErrDownstreamClient
}

// DownstreamServerError represents a 5xx response or a transport failure.
// For transport failures StatusCode is 0 and Cause is set.
type DownstreamServerError struct {
	// StatusCode is the backend HTTP status (0 for transport failures)
	StatusCode int

	// Body is the backend response body
	Body []byte

	// Cause is the underlying transport error (if any)
	Cause error
}

// Error implements the error interface.
func (e *DownstreamServerError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("downstream unavailable: %v", e.Cause)
	}
	if e.Cause != nil {
		return fmt.Sprintf("downstream %d error: %v", e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("downstream %d error: %s", e.StatusCode, message(e.Body))
}

// Unwrap returns the underlying error for error chain support.
func (e *DownstreamServerError) Unwrap() error {
	return e.Cause
}

// Is implements error matching for errors.Is().
func (e *DownstreamServerError) Is(target error) bool {
	return target == ErrDownstreamServer
}

// TimeoutError represents a call that exceeded its deadline.
type TimeoutError struct {
	// Timeout is the per-call timeout in effect
	Timeout time.Duration

	// Cause is the context error
	Cause error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	if e.Timeout <= 0 {
		return "downstream request timeout: deadline exceeded"
	}
	return fmt.Sprintf("downstream request timeout after %s", e.Timeout)
}

// Unwrap returns the underlying error for error chain support.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// Is implements error matching for errors.Is().
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

func message(body []byte) string {
	if len(body) == 0 {
		return "(empty body)"
	}
	if len(body) > maxMessageBytes {
		return string(body[:maxMessageBytes]) + "..."
	}
	return string(body)
}
