package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider reads secrets from environment variables. The secret name is
// upper-cased, hyphens become underscores and Prefix is prepended:
// "jwt-key" with prefix "GATEWAY_SECRET_" reads GATEWAY_SECRET_JWT_KEY.
type EnvProvider struct {
	Prefix string
}

// NewEnvProvider creates an EnvProvider.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{Prefix: prefix}
}

// Lookup implements Provider.
func (p *EnvProvider) Lookup(_ context.Context, name string) (string, error) {
	key := p.variable(name)
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s (env %s)", ErrNotFound, name, key)
	}
	return value, nil
}

// Name implements Provider.
func (p *EnvProvider) Name() string { return "env" }

func (p *EnvProvider) variable(name string) string {
	return p.Prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
