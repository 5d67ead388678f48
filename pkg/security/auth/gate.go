package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"estech/inference-gateway/pkg/config"
)

const bearerScheme = "Bearer"

// BearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively and must be followed by a space.
func BearerToken(header string) (string, bool) {
	if len(header) <= len(bearerScheme) || header[len(bearerScheme)] != ' ' {
		return "", false
	}
	if !strings.EqualFold(header[:len(bearerScheme)], bearerScheme) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerScheme)+1:])
	if token == "" {
		return "", false
	}
	return token, true
}

// Gate is the authentication decision point in front of the pipeline.
type Gate struct {
	validator Validator
}

// NewGate creates a Gate backed by v. A nil validator rejects everything.
func NewGate(v Validator) *Gate {
	return &Gate{validator: v}
}

// Authenticate validates the Authorization header value. Every failure is
// an *UnauthorizedError.
func (g *Gate) Authenticate(ctx context.Context, header string) (*Principal, error) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, &UnauthorizedError{Reason: "missing bearer token", Err: ErrMissingCredential}
	}
	if g.validator == nil {
		return nil, &UnauthorizedError{Reason: "no credential validator configured", Err: ErrInvalidCredential}
	}

	p, err := g.validator.Validate(ctx, token)
	if err != nil {
		return nil, &UnauthorizedError{Reason: "invalid credential", Err: err}
	}
	if p == nil {
		return nil, &UnauthorizedError{Reason: "invalid credential", Err: errors.New("validator returned no principal")}
	}
	return p, nil
}

// NewValidator builds the Validator selected by the auth configuration.
func NewValidator(cfg config.AuthConfig) (Validator, error) {
	switch cfg.Mode {
	case "jwt":
		return NewJWTValidator(JWTConfig{
			Secret:   []byte(cfg.JWT.Secret),
			Issuer:   cfg.JWT.Issuer,
			Audience: cfg.JWT.Audience,
			Leeway:   cfg.JWT.Leeway,
		})
	case "apikey":
		keys := make([]*APIKeyInfo, 0, len(cfg.APIKeys))
		for _, k := range cfg.APIKeys {
			keys = append(keys, &APIKeyInfo{Key: k.Key, UserID: k.UserID, Enabled: k.Enabled})
		}
		return NewAPIKeyValidator(keys), nil
	case "noop":
		return NoopValidator{}, nil
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}
