package auth

import (
	"context"
	"errors"
	"fmt"
)

// Common authentication errors that can be checked with errors.Is().
var (
	// ErrUnauthorized matches every authentication failure.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMissingCredential is returned when no bearer token is present.
	ErrMissingCredential = errors.New("missing bearer credential")

	// ErrInvalidCredential is returned when a token is present but rejected.
	ErrInvalidCredential = errors.New("invalid credential")
)

// UnauthorizedError describes why a caller was rejected. Reason is safe to
// return to the caller; Err carries the underlying validator error for logs.
type UnauthorizedError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *UnauthorizedError) Error() string {
	if e.Reason == "" {
		return "unauthorized"
	}
	return fmt.Sprintf("unauthorized: %s", e.Reason)
}

// Unwrap returns the wrapped error for error chain traversal.
func (e *UnauthorizedError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is().
func (e *UnauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}

// Principal identifies an authenticated caller.
type Principal struct {
	// Subject is the caller identity (JWT "sub" or the key's user id).
	Subject string

	// Method is the validator that accepted the credential.
	Method string
}

// Validator checks a bearer token. Implementations must fail closed: any
// token they cannot positively verify is an error.
type Validator interface {
	Validate(ctx context.Context, token string) (*Principal, error)
}

type contextKey string

const principalKey contextKey = "auth_principal"

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom retrieves the authenticated caller from ctx.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}
