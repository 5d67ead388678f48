package config

import "time"

// Config is the root configuration structure for the inference gateway.
// It holds the server settings, the gateway tunables, the resilience policy,
// the route table source, authentication and telemetry.
type Config struct {
	// Server contains HTTP listener configuration.
	Server ServerConfig `yaml:"server"`

	// Gateway contains the dispatch pipeline tunables (admission limit,
	// forwarding timeout).
	Gateway GatewayConfig `yaml:"gateway"`

	// Resilience contains the circuit breaker and retry policy that wraps
	// every forwarded call.
	Resilience ResilienceConfig `yaml:"resilience"`

	// Routes describes where the route table (service name -> base URL)
	// is loaded from.
	Routes RoutesConfig `yaml:"routes"`

	// Security contains caller authentication settings.
	Security SecurityConfig `yaml:"security"`

	// Telemetry contains logging, metrics, tracing and health settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the inbound HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response writes.
	// It must exceed the pipeline request timeout or responses get cut.
	// Default: 120s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes caps the inbound request body, including multipart
	// uploads that are buffered for retry.
	// Default: 33554432 (32MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// TLS configures HTTPS termination on the listener.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig configures inbound TLS.
type TLSConfig struct {
	// Enabled serves HTTPS instead of plain HTTP.
	Enabled bool `yaml:"enabled"`

	// CertFile is the PEM certificate chain.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the PEM private key.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the lowest accepted protocol version: "1.2" or "1.3".
	// Default: "1.3"
	MinVersion string `yaml:"min_version"`

	// ReloadInterval is how often the certificate files are checked for
	// renewal.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"reload_interval"`
}

// GatewayConfig contains the tunables of the dispatch pipeline.
type GatewayConfig struct {
	// MaxConcurrent bounds the number of in-flight requests.
	// Default: 100
	MaxConcurrent int `yaml:"max_concurrent"`

	// Timeout is the per-attempt forwarding timeout.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// RequestTimeout bounds the whole pipeline including retries. Zero
	// derives it from Timeout, MaxAttempts and RetryDelay.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// TraceURLBase prefixes trace identifiers in legacy compute responses.
	// Default: "http://localhost:8080/trace/"
	TraceURLBase string `yaml:"trace_url_base"`
}

// ResilienceConfig contains the circuit breaker and retry policy.
type ResilienceConfig struct {
	// MaxAttempts is the total number of forwarding attempts per request.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts"`

	// RetryDelay is the fixed delay between attempts.
	// Default: 1s
	RetryDelay time.Duration `yaml:"retry_delay"`

	// FailureRateThreshold is the failure percentage (1-100) at or above
	// which the breaker opens.
	// Default: 50
	FailureRateThreshold float64 `yaml:"failure_rate_threshold"`

	// MinimumCalls is the number of recorded outcomes required before the
	// failure rate is evaluated.
	// Default: 3
	MinimumCalls int `yaml:"minimum_calls"`

	// WindowSize is the number of most recent outcomes kept in the rolling
	// window. Defaults to MinimumCalls.
	WindowSize int `yaml:"window_size"`

	// WaitDurationInOpen is how long the breaker rejects calls before
	// letting a probe through.
	// Default: 10s
	WaitDurationInOpen time.Duration `yaml:"wait_duration_in_open"`

	// HalfOpenMaxCalls is the number of concurrent probe calls allowed in
	// the half-open state.
	// Default: 1
	HalfOpenMaxCalls int `yaml:"half_open_max_calls"`
}

// RoutesConfig describes the route table source.
type RoutesConfig struct {
	// Source selects the loader: "inline", "file" or "sqlite".
	// Default: "inline" when Providers is set, otherwise "file".
	Source string `yaml:"source"`

	// FilePath is the YAML route file used when Source is "file".
	// The file holds a top-level "providers" mapping.
	// Default: "./routes.yaml"
	FilePath string `yaml:"file_path"`

	// Providers is an inline route table (service name -> base URL).
	Providers map[string]string `yaml:"providers"`

	// SQLite configures the database-backed route source.
	SQLite RoutesSQLiteConfig `yaml:"sqlite"`

	// Watch reloads the route file when it changes on disk.
	Watch bool `yaml:"watch"`

	// ReloadSchedule is an optional cron expression for periodic reloads
	// (e.g. "@every 1m").
	ReloadSchedule string `yaml:"reload_schedule"`
}

// RoutesSQLiteConfig configures the SQLite route source.
type RoutesSQLiteConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// Table is the table holding (name, base_url) rows.
	// Default: "routes"
	Table string `yaml:"table"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	// Auth configures bearer credential validation.
	Auth AuthConfig `yaml:"auth"`

	// Secrets configures resolution of ${secret:name} references in the
	// auth settings.
	Secrets SecretsConfig `yaml:"secrets"`
}

// SecretsConfig configures where secret references are resolved from.
// Providers are tried in order: directory first, then environment.
type SecretsConfig struct {
	// EnvPrefix is prepended to the upper-cased secret name to form the
	// environment variable (jwt-key -> GATEWAY_SECRET_JWT_KEY).
	// Default: "GATEWAY_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// Dir holds one file per secret (Kubernetes secret mount). Optional.
	Dir string `yaml:"dir"`

	// Watch refreshes file secrets when the directory changes.
	Watch bool `yaml:"watch"`

	// CacheTTL bounds how long resolved values are cached.
	// Default: 5m
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// AuthConfig configures the caller credential check.
type AuthConfig struct {
	// Mode selects the validator: "jwt", "apikey" or "noop".
	// "noop" accepts any present bearer token and is intended for
	// development only.
	// Default: "jwt"
	Mode string `yaml:"mode"`

	// JWT configures HS256 token validation.
	JWT JWTConfig `yaml:"jwt"`

	// APIKeys lists static bearer keys accepted when Mode is "apikey".
	APIKeys []APIKeyConfig `yaml:"api_keys"`
}

// JWTConfig configures HMAC-signed JWT validation.
type JWTConfig struct {
	// Secret is the shared HMAC key.
	Secret string `yaml:"secret"`

	// Issuer, when set, must match the "iss" claim.
	Issuer string `yaml:"issuer"`

	// Audience, when set, must be present in the "aud" claim.
	Audience string `yaml:"audience"`

	// Leeway tolerates clock skew on exp/nbf checks.
	Leeway time.Duration `yaml:"leeway"`
}

// APIKeyConfig is a single static API key.
type APIKeyConfig struct {
	Key     string `yaml:"key"`
	UserID  string `yaml:"user_id"`
	Enabled bool   `yaml:"enabled"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health endpoint configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json", "text" or "console".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are recorded and exposed.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "gateway"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem.
	// Default: "run"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets are the latency histogram buckets in seconds.
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// IsEnabled reports whether metrics are enabled, treating unset as true.
func (m MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	Enabled bool `yaml:"enabled"`

	// Exporter is the span exporter. Only "otlp" is supported.
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the OTLP gRPC collector endpoint (host:port).
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`

	// SampleRatio is the fraction of traces sampled (0.0-1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "inference-gateway"
	ServiceName string `yaml:"service_name"`
}

// HealthConfig contains health endpoint configuration.
type HealthConfig struct {
	// LivenessPath is the liveness probe path.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the readiness probe path.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`
}
