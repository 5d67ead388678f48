package dispatch

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest matches every normalization failure.
var ErrInvalidRequest = errors.New("invalid request")

// InvalidRequestError reports a malformed inbound call.
type InvalidRequestError struct {
	// Reason is a caller-facing description.
	Reason string

	// Err is the underlying decoding error, if any.
	Err error
}

// Error implements the error interface.
func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Reason
}

// Unwrap returns the wrapped error for error chain traversal.
func (e *InvalidRequestError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is().
func (e *InvalidRequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}

func invalid(format string, args ...any) *InvalidRequestError {
	return &InvalidRequestError{Reason: fmt.Sprintf(format, args...)}
}
