package secrets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"estech/inference-gateway/pkg/config"
)

var referencePattern = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// Resolver replaces ${secret:name} references with values from an ordered
// list of providers. The first provider holding the secret wins.
type Resolver struct {
	providers []Provider
	cache     *cache
	logger    *slog.Logger
}

// NewResolver creates a Resolver caching values for ttl.
func NewResolver(ttl time.Duration, providers ...Provider) *Resolver {
	return &Resolver{
		providers: providers,
		cache:     newCache(ttl),
		logger:    slog.Default().With("component", "secrets"),
	}
}

// NewFromConfig builds the resolver described by cfg: the secret directory
// (when set) followed by the environment.
func NewFromConfig(cfg config.SecretsConfig) (*Resolver, error) {
	var providers []Provider
	if cfg.Dir != "" {
		fp, err := NewFileProvider(cfg.Dir, cfg.Watch)
		if err != nil {
			return nil, err
		}
		providers = append(providers, fp)
	}
	providers = append(providers, NewEnvProvider(cfg.EnvPrefix))
	return NewResolver(cfg.CacheTTL, providers...), nil
}

// Get returns the value of the named secret.
func (r *Resolver) Get(ctx context.Context, name string) (string, error) {
	if v, ok := r.cache.get(name); ok {
		return v, nil
	}

	var errs []error
	for _, p := range r.providers {
		v, err := p.Lookup(ctx, name)
		if err == nil {
			r.cache.set(name, v)
			r.logger.Debug("secret resolved", "name", name, "provider", p.Name())
			return v, nil
		}
		if !errors.Is(err, ErrNotFound) {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}
	if len(errs) > 0 {
		return "", fmt.Errorf("secret %q: %w", name, errors.Join(errs...))
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Resolve expands every ${secret:name} reference in s. Strings without
// references are returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, s string) (string, error) {
	if !strings.Contains(s, "${secret:") {
		return s, nil
	}

	var errs []error
	out := referencePattern.ReplaceAllStringFunc(s, func(ref string) string {
		name := strings.TrimSpace(referencePattern.FindStringSubmatch(ref)[1])
		v, err := r.Get(ctx, name)
		if err != nil {
			errs = append(errs, err)
			return ref
		}
		return v
	})
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return out, nil
}

// ResolveAuth expands references in the JWT secret and API keys in place.
func (r *Resolver) ResolveAuth(ctx context.Context, auth *config.AuthConfig) error {
	secret, err := r.Resolve(ctx, auth.JWT.Secret)
	if err != nil {
		return fmt.Errorf("security.auth.jwt.secret: %w", err)
	}
	auth.JWT.Secret = secret

	for i := range auth.APIKeys {
		key, err := r.Resolve(ctx, auth.APIKeys[i].Key)
		if err != nil {
			return fmt.Errorf("security.auth.api_keys[%d].key: %w", i, err)
		}
		auth.APIKeys[i].Key = key
	}
	return nil
}

// Refresh drops cached values in the resolver and its providers.
func (r *Resolver) Refresh() {
	r.cache.clear()
	for _, p := range r.providers {
		if fp, ok := p.(*FileProvider); ok {
			fp.Refresh()
		}
	}
}

// Close releases provider resources.
func (r *Resolver) Close() error {
	var errs []error
	for _, p := range r.providers {
		if c, ok := p.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
