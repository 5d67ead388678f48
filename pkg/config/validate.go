package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateGateway(&cfg.Gateway)...)
	errs = append(errs, validateResilience(&cfg.Resilience)...)
	errs = append(errs, validateRoutes(&cfg.Routes)...)
	errs = append(errs, validateSecurity(&cfg.Security)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}
	if cfg.MaxBodyBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_body_bytes",
			Message: "max body bytes must be positive",
		})
	}

	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" {
			errs = append(errs, FieldError{
				Field:   "server.tls.cert_file",
				Message: "cert file is required when TLS is enabled",
			})
		}
		if cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{
				Field:   "server.tls.key_file",
				Message: "key file is required when TLS is enabled",
			})
		}
		if cfg.TLS.MinVersion != "1.2" && cfg.TLS.MinVersion != "1.3" {
			errs = append(errs, FieldError{
				Field:   "server.tls.min_version",
				Message: fmt.Sprintf("invalid TLS version %q: must be '1.2' or '1.3'", cfg.TLS.MinVersion),
			})
		}
		if cfg.TLS.ReloadInterval <= 0 {
			errs = append(errs, FieldError{
				Field:   "server.tls.reload_interval",
				Message: "reload interval must be positive",
			})
		}
	}

	return errs
}

func validateGateway(cfg *GatewayConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxConcurrent <= 0 {
		errs = append(errs, FieldError{
			Field:   "gateway.max_concurrent",
			Message: "max concurrent must be positive",
		})
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "gateway.timeout",
			Message: "timeout must be positive",
		})
	}
	if cfg.RequestTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "gateway.request_timeout",
			Message: "request timeout must be positive",
		})
	}

	return errs
}

func validateResilience(cfg *ResilienceConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxAttempts < 1 {
		errs = append(errs, FieldError{
			Field:   "resilience.max_attempts",
			Message: "max attempts must be at least 1",
		})
	}
	if cfg.RetryDelay < 0 {
		errs = append(errs, FieldError{
			Field:   "resilience.retry_delay",
			Message: "retry delay must be non-negative",
		})
	}
	if cfg.FailureRateThreshold <= 0 || cfg.FailureRateThreshold > 100 {
		errs = append(errs, FieldError{
			Field:   "resilience.failure_rate_threshold",
			Message: "failure rate threshold must be in (0, 100]",
		})
	}
	if cfg.MinimumCalls < 1 {
		errs = append(errs, FieldError{
			Field:   "resilience.minimum_calls",
			Message: "minimum calls must be at least 1",
		})
	}
	if cfg.WindowSize < cfg.MinimumCalls {
		errs = append(errs, FieldError{
			Field:   "resilience.window_size",
			Message: fmt.Sprintf("window size (%d) must be >= minimum calls (%d)", cfg.WindowSize, cfg.MinimumCalls),
		})
	}
	if cfg.WaitDurationInOpen <= 0 {
		errs = append(errs, FieldError{
			Field:   "resilience.wait_duration_in_open",
			Message: "wait duration in open must be positive",
		})
	}
	if cfg.HalfOpenMaxCalls < 1 {
		errs = append(errs, FieldError{
			Field:   "resilience.half_open_max_calls",
			Message: "half open max calls must be at least 1",
		})
	}

	return errs
}

func validateRoutes(cfg *RoutesConfig) []FieldError {
	var errs []FieldError

	switch cfg.Source {
	case "inline":
		if len(cfg.Providers) == 0 {
			errs = append(errs, FieldError{
				Field:   "routes.providers",
				Message: "at least one provider is required for inline routes",
			})
		}
	case "file":
		if cfg.FilePath == "" {
			errs = append(errs, FieldError{
				Field:   "routes.file_path",
				Message: "file path is required for file routes",
			})
		}
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "routes.sqlite.path",
				Message: "database path is required for sqlite routes",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "routes.source",
			Message: fmt.Sprintf("invalid route source %q: must be 'inline', 'file', or 'sqlite'", cfg.Source),
		})
	}

	for name, base := range cfg.Providers {
		field := fmt.Sprintf("routes.providers.%s", name)
		if strings.TrimSpace(name) == "" {
			errs = append(errs, FieldError{Field: "routes.providers", Message: "provider name must not be empty"})
			continue
		}
		if err := ValidateBaseURL(base); err != nil {
			errs = append(errs, FieldError{Field: field, Message: err.Error()})
		}
	}

	if cfg.Watch && cfg.Source != "file" {
		errs = append(errs, FieldError{
			Field:   "routes.watch",
			Message: "watch is only supported for file routes",
		})
	}

	return errs
}

// ValidateBaseURL checks that a route base URL is an absolute http(s) URL.
func ValidateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base URL %q: host is required", raw)
	}
	return nil
}

func validateSecurity(cfg *SecurityConfig) []FieldError {
	var errs []FieldError

	switch cfg.Auth.Mode {
	case "jwt":
		if cfg.Auth.JWT.Secret == "" {
			errs = append(errs, FieldError{
				Field:   "security.auth.jwt.secret",
				Message: "secret is required for jwt auth",
			})
		}
	case "apikey":
		enabled := 0
		for i, k := range cfg.Auth.APIKeys {
			if k.Key == "" {
				errs = append(errs, FieldError{
					Field:   fmt.Sprintf("security.auth.api_keys[%d].key", i),
					Message: "key is required",
				})
			}
			if k.Enabled {
				enabled++
			}
		}
		if enabled == 0 {
			errs = append(errs, FieldError{
				Field:   "security.auth.api_keys",
				Message: "at least one enabled key is required for apikey auth",
			})
		}
	case "noop":
	default:
		errs = append(errs, FieldError{
			Field:   "security.auth.mode",
			Message: fmt.Sprintf("invalid auth mode %q: must be 'jwt', 'apikey', or 'noop'", cfg.Auth.Mode),
		})
	}

	if cfg.Secrets.CacheTTL < 0 {
		errs = append(errs, FieldError{
			Field:   "security.secrets.cache_ttl",
			Message: "cache ttl must be non-negative",
		})
	}
	if cfg.Secrets.Watch && cfg.Secrets.Dir == "" {
		errs = append(errs, FieldError{
			Field:   "security.secrets.watch",
			Message: "watch requires a secrets dir",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.IsEnabled() && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "tracing endpoint is required when tracing is enabled",
			})
		}
		if cfg.Tracing.Exporter != "otlp" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.exporter",
				Message: fmt.Sprintf("unsupported exporter %q: must be 'otlp'", cfg.Tracing.Exporter),
			})
		}
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	if !strings.HasPrefix(cfg.Health.LivenessPath, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.liveness_path",
			Message: "liveness path must start with /",
		})
	}
	if !strings.HasPrefix(cfg.Health.ReadinessPath, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.readiness_path",
			Message: "readiness path must start with /",
		})
	}

	return errs
}
