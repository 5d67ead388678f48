package resilience

import (
	"errors"
	"fmt"
	"time"
)

// ErrCircuitOpen matches calls rejected by an open (or saturated half-open)
// circuit.
var ErrCircuitOpen = errors.New("circuit open")

// CircuitOpenError is returned when the breaker rejects a call without
// invoking the backend.
type CircuitOpenError struct {
	// State is the breaker state at rejection time.
	State State

	// RetryAfter is the remaining open wait, zero in half-open.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *CircuitOpenError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("circuit breaker is %s (retry after %s)", e.State, e.RetryAfter.Round(time.Millisecond))
	}
	return fmt.Sprintf("circuit breaker is %s", e.State)
}

// Is implements error matching for errors.Is().
func (e *CircuitOpenError) Is(target error) bool {
	return target == ErrCircuitOpen
}
