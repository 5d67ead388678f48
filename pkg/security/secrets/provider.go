// Package secrets resolves ${secret:name} references in the gateway's
// credential settings from environment variables or a mounted secret
// directory.
package secrets

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Provider that does not hold the secret.
var ErrNotFound = errors.New("secret not found")

// Provider looks up secret values by name.
type Provider interface {
	// Lookup returns the value of name, or an error wrapping ErrNotFound.
	Lookup(ctx context.Context, name string) (string, error)

	// Name identifies the provider in logs ("env", "file").
	Name() string
}
