package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 120 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576  // 1MB
	DefaultMaxBodyBytes    = 33554432 // 32MB
	DefaultTLSMinVersion   = "1.3"
	DefaultTLSReload       = 5 * time.Minute

	// Gateway defaults
	DefaultMaxConcurrent = 100
	DefaultTimeout       = 30 * time.Second
	DefaultTraceURLBase  = "http://localhost:8080/trace/"

	// Resilience defaults
	DefaultMaxAttempts          = 3
	DefaultRetryDelay           = 1 * time.Second
	DefaultFailureRateThreshold = 50.0
	DefaultMinimumCalls         = 3
	DefaultWaitDurationInOpen   = 10 * time.Second
	DefaultHalfOpenMaxCalls     = 1

	// Routes defaults
	DefaultRoutesFilePath    = "./routes.yaml"
	DefaultRoutesSQLiteTable = "routes"

	// Security defaults
	DefaultAuthMode        = "jwt"
	DefaultSecretEnvPrefix = "GATEWAY_SECRET_"
	DefaultSecretCacheTTL  = 5 * time.Minute

	// Telemetry defaults
	DefaultLoggingLevel      = "info"
	DefaultLoggingFormat     = "json"
	DefaultMetricsPath       = "/metrics"
	DefaultMetricsNamespace  = "gateway"
	DefaultMetricsSubsystem  = "run"
	DefaultTracingExporter   = "otlp"
	DefaultTracingSampleRate = 1.0
	DefaultTracingService    = "inference-gateway"
	DefaultLivenessPath      = "/health"
	DefaultReadinessPath     = "/ready"
)

// DefaultRequestDurationBuckets covers fast routing failures up to slow
// model inference calls.
var DefaultRequestDurationBuckets = []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.Server.TLS.ReloadInterval == 0 {
		cfg.Server.TLS.ReloadInterval = DefaultTLSReload
	}

	// Gateway defaults
	if cfg.Gateway.MaxConcurrent == 0 {
		cfg.Gateway.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.Gateway.Timeout == 0 {
		cfg.Gateway.Timeout = DefaultTimeout
	}
	if cfg.Gateway.TraceURLBase == "" {
		cfg.Gateway.TraceURLBase = DefaultTraceURLBase
	}

	// Resilience defaults
	if cfg.Resilience.MaxAttempts == 0 {
		cfg.Resilience.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Resilience.RetryDelay == 0 {
		cfg.Resilience.RetryDelay = DefaultRetryDelay
	}
	if cfg.Resilience.FailureRateThreshold == 0 {
		cfg.Resilience.FailureRateThreshold = DefaultFailureRateThreshold
	}
	if cfg.Resilience.MinimumCalls == 0 {
		cfg.Resilience.MinimumCalls = DefaultMinimumCalls
	}
	if cfg.Resilience.WindowSize == 0 {
		cfg.Resilience.WindowSize = cfg.Resilience.MinimumCalls
	}
	if cfg.Resilience.WaitDurationInOpen == 0 {
		cfg.Resilience.WaitDurationInOpen = DefaultWaitDurationInOpen
	}
	if cfg.Resilience.HalfOpenMaxCalls == 0 {
		cfg.Resilience.HalfOpenMaxCalls = DefaultHalfOpenMaxCalls
	}

	// Pipeline timeout covers every attempt plus the delays between them
	if cfg.Gateway.RequestTimeout == 0 {
		attempts := time.Duration(cfg.Resilience.MaxAttempts)
		cfg.Gateway.RequestTimeout = cfg.Gateway.Timeout*attempts + cfg.Resilience.RetryDelay*(attempts-1)
	}

	// Routes defaults
	if cfg.Routes.Source == "" {
		if len(cfg.Routes.Providers) > 0 {
			cfg.Routes.Source = "inline"
		} else {
			cfg.Routes.Source = "file"
		}
	}
	if cfg.Routes.FilePath == "" {
		cfg.Routes.FilePath = DefaultRoutesFilePath
	}
	if cfg.Routes.SQLite.Table == "" {
		cfg.Routes.SQLite.Table = DefaultRoutesSQLiteTable
	}

	// Security defaults
	if cfg.Security.Auth.Mode == "" {
		cfg.Security.Auth.Mode = DefaultAuthMode
	}
	if cfg.Security.Secrets.EnvPrefix == "" {
		cfg.Security.Secrets.EnvPrefix = DefaultSecretEnvPrefix
	}
	if cfg.Security.Secrets.CacheTTL == 0 {
		cfg.Security.Secrets.CacheTTL = DefaultSecretCacheTTL
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}
	if cfg.Telemetry.Tracing.Exporter == "" {
		cfg.Telemetry.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRate
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultReadinessPath
	}
}
