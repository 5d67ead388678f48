package auth

import "context"

// NoopValidator accepts any non-empty token. It exists for local
// development and must be selected explicitly.
type NoopValidator struct{}

// Validate implements Validator.
func (NoopValidator) Validate(_ context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrMissingCredential
	}
	return &Principal{Subject: "anonymous", Method: "noop"}, nil
}
