package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := &Config{
		Routes: RoutesConfig{Providers: map[string]string{"svc": "http://svc.internal"}},
		Security: SecurityConfig{Auth: AuthConfig{
			Mode: "jwt",
			JWT:  JWTConfig{Secret: "k"},
		}},
	}
	ApplyDefaults(cfg)
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Gateway.MaxConcurrent != 100 {
		t.Errorf("expected max concurrent 100, got %d", cfg.Gateway.MaxConcurrent)
	}
	if cfg.Gateway.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, cfg.Gateway.Timeout)
	}
	if cfg.Resilience.MaxAttempts != 3 || cfg.Resilience.MinimumCalls != 3 {
		t.Errorf("unexpected resilience defaults: %+v", cfg.Resilience)
	}
	if cfg.Resilience.FailureRateThreshold != 50 {
		t.Errorf("expected threshold 50, got %v", cfg.Resilience.FailureRateThreshold)
	}
	if cfg.Routes.Source != "file" {
		t.Errorf("expected file route source without providers, got %q", cfg.Routes.Source)
	}
	if !cfg.Telemetry.Metrics.IsEnabled() {
		t.Error("expected metrics enabled by default")
	}
	if cfg.Server.TLS.MinVersion != "1.3" || cfg.Server.TLS.ReloadInterval != DefaultTLSReload {
		t.Errorf("unexpected tls defaults: %+v", cfg.Server.TLS)
	}
	if cfg.Security.Secrets.EnvPrefix != "GATEWAY_SECRET_" {
		t.Errorf("expected secret env prefix GATEWAY_SECRET_, got %q", cfg.Security.Secrets.EnvPrefix)
	}

	// Idempotent
	before := *cfg
	ApplyDefaults(cfg)
	if before.Gateway.RequestTimeout != cfg.Gateway.RequestTimeout {
		t.Error("ApplyDefaults is not idempotent")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"valid", func(*Config) {}, ""},
		{"negative concurrency", func(c *Config) { c.Gateway.MaxConcurrent = -1 }, "gateway.max_concurrent"},
		{"zero attempts", func(c *Config) { c.Resilience.MaxAttempts = 0 }, "resilience.max_attempts"},
		{"threshold above 100", func(c *Config) { c.Resilience.FailureRateThreshold = 150 }, "resilience.failure_rate_threshold"},
		{"window below minimum", func(c *Config) { c.Resilience.WindowSize = 1; c.Resilience.MinimumCalls = 5 }, "resilience.window_size"},
		{"unknown route source", func(c *Config) { c.Routes.Source = "consul" }, "routes.source"},
		{"sqlite without path", func(c *Config) { c.Routes.Source = "sqlite" }, "routes.sqlite.path"},
		{"relative base url", func(c *Config) { c.Routes.Providers["bad"] = "/just/a/path" }, "routes.providers.bad"},
		{"watch on inline", func(c *Config) { c.Routes.Watch = true }, "routes.watch"},
		{"unknown auth mode", func(c *Config) { c.Security.Auth.Mode = "basic" }, "security.auth.mode"},
		{"apikey without keys", func(c *Config) { c.Security.Auth.Mode = "apikey" }, "security.auth.api_keys"},
		{"bad log level", func(c *Config) { c.Telemetry.Logging.Level = "trace" }, "telemetry.logging.level"},
		{"tracing without endpoint", func(c *Config) { c.Telemetry.Tracing.Enabled = true }, "telemetry.tracing.endpoint"},
		{"tls without cert", func(c *Config) { c.Server.TLS.Enabled = true; c.Server.TLS.KeyFile = "k.pem" }, "server.tls.cert_file"},
		{"tls 1.1", func(c *Config) {
			c.Server.TLS = TLSConfig{Enabled: true, CertFile: "c.pem", KeyFile: "k.pem", MinVersion: "1.1", ReloadInterval: time.Minute}
		}, "server.tls.min_version"},
		{"secret watch without dir", func(c *Config) { c.Security.Secrets.Watch = true }, "security.secrets.watch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %q, got %v", tt.wantField, verr.Errors)
			}
		})
	}
}

func TestValidationError_Format(t *testing.T) {
	one := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if one.Error() != "configuration validation failed: a: bad" {
		t.Errorf("unexpected single error format: %q", one.Error())
	}

	many := ValidationError{Errors: []FieldError{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}}}
	if !strings.Contains(many.Error(), "with 2 errors") {
		t.Errorf("unexpected multi error format: %q", many.Error())
	}
}

func TestValidateBaseURL(t *testing.T) {
	for _, ok := range []string{"http://a", "https://a.b:8443/prefix/"} {
		if err := ValidateBaseURL(ok); err != nil {
			t.Errorf("ValidateBaseURL(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "a.b", "ftp://a", "http://"} {
		if err := ValidateBaseURL(bad); err == nil {
			t.Errorf("ValidateBaseURL(%q) expected error", bad)
		}
	}
}
