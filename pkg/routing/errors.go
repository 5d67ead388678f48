package routing

import (
	"errors"
	"fmt"
	"strings"
)

// Common routing errors that can be checked with errors.Is().
var (
	// ErrUnknownService is returned when a service name is absent from the
	// route table.
	ErrUnknownService = errors.New("unknown service")

	// ErrNoRoutes is returned when a source yields an empty route table.
	ErrNoRoutes = errors.New("no routes configured")

	// ErrInvalidRoute is returned when a route entry is malformed.
	ErrInvalidRoute = errors.New("invalid route")
)

// UnknownServiceError is returned when the requested service name does not
// resolve to a base URL.
type UnknownServiceError struct {
	// Service is the requested service name.
	Service string

	// Available contains the configured service names.
	Available []string
}

// Error implements the error interface.
func (e *UnknownServiceError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unknown service %q", e.Service)
	}
	return fmt.Sprintf("unknown service %q (available services: %s)",
		e.Service, strings.Join(e.Available, ", "))
}

// Is implements error matching for errors.Is().
func (e *UnknownServiceError) Is(target error) bool {
	return target == ErrUnknownService
}

// InvalidRouteError is returned when a route entry cannot be used.
type InvalidRouteError struct {
	// Service is the service name of the offending entry.
	Service string

	// Reason explains what is wrong with the entry.
	Reason string
}

// Error implements the error interface.
func (e *InvalidRouteError) Error() string {
	return fmt.Sprintf("invalid route %q: %s", e.Service, e.Reason)
}

// Is implements error matching for errors.Is().
func (e *InvalidRouteError) Is(target error) bool {
	return target == ErrInvalidRoute
}
