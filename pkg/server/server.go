package server

import (
	"context"
	stdtls "crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"estech/inference-gateway/pkg/config"
	"estech/inference-gateway/pkg/gateway"
	"estech/inference-gateway/pkg/proxy/handlers"
	"estech/inference-gateway/pkg/proxy/middleware"
	"estech/inference-gateway/pkg/security/auth"
	"estech/inference-gateway/pkg/security/tls"
	"estech/inference-gateway/pkg/telemetry/health"
	"estech/inference-gateway/pkg/telemetry/metrics"
	"estech/inference-gateway/pkg/telemetry/tracing"
)

// Paths of the dispatch and operator endpoints.
const (
	RunPath          = "/v1/run"
	ComputePath      = "/api/v1/compute"
	CircuitPath      = "/admin/circuit"
	CircuitResetPath = "/admin/circuit/reset"
	RoutesPath       = "/admin/routes"
	RoutesReloadPath = "/admin/routes/reload"
	VersionPath      = "/version"
)

// BuildInfo is reported on the version endpoint.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Options holds the components the server exposes.
type Options struct {
	Config  *config.Config
	Gateway *gateway.Gateway

	// Auth protects the operator endpoints.
	Auth *auth.Gate

	// Routes serves the route listing and reload endpoints.
	Routes *handlers.RoutesHandler

	Metrics *metrics.Recorder
	Health  *health.Checker
	Build   BuildInfo
}

// Server is the gateway's HTTP server.
type Server struct {
	cfg     *config.Config
	opts    Options
	handler http.Handler
	logger  *slog.Logger

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
	reloader *tls.CertificateReloader
	running  bool
}

// New creates a Server and builds its routes.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("server: config is required")
	}
	if opts.Gateway == nil {
		return nil, errors.New("server: gateway is required")
	}
	if opts.Auth == nil {
		return nil, errors.New("server: auth gate is required")
	}
	if opts.Health == nil {
		opts.Health = health.New(0)
	}

	s := &Server{
		cfg:    opts.Config,
		opts:   opts,
		logger: slog.Default().With("component", "server"),
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	gw := s.opts.Gateway

	mux.Handle(RunPath, gw)
	mux.HandleFunc(ComputePath, gw.Compute)

	protect := s.opts.Auth.Middleware
	circuit := handlers.NewCircuitHandler(gw.Breaker())
	mux.Handle(CircuitPath, protect(http.HandlerFunc(circuit.Status)))
	mux.Handle(CircuitResetPath, protect(http.HandlerFunc(circuit.Reset)))
	if rh := s.opts.Routes; rh != nil {
		mux.Handle(RoutesPath, protect(http.HandlerFunc(rh.List)))
		mux.Handle(RoutesReloadPath, protect(http.HandlerFunc(rh.Reload)))
	}

	hc := s.cfg.Telemetry.Health
	mux.Handle(hc.LivenessPath, s.opts.Health.LivenessHandler())
	mux.Handle(hc.ReadinessPath, s.opts.Health.ReadinessHandler())
	b := s.opts.Build
	mux.Handle(VersionPath, health.VersionHandler(b.Version, b.Commit, b.BuildTime))

	if mc := s.cfg.Telemetry.Metrics; mc.IsEnabled() && s.opts.Metrics != nil {
		mux.Handle(mc.Path, s.opts.Metrics.Handler())
	}

	return middleware.Chain(mux,
		middleware.RecoveryMiddleware,
		middleware.TraceIDMiddleware,
		tracing.HTTPMiddleware,
		middleware.LoggingMiddleware,
	)
}

// Start binds the listener and serves in the background. Errors from the
// serve loop other than a clean shutdown are sent on the returned channel.
func (s *Server) Start(ctx context.Context) (<-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil, errors.New("server is already running")
	}

	sc := s.cfg.Server
	srv := &http.Server{
		Handler:        s.handler,
		ReadTimeout:    sc.ReadTimeout,
		WriteTimeout:   sc.WriteTimeout,
		IdleTimeout:    sc.IdleTimeout,
		MaxHeaderBytes: sc.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	var tlsConfig *stdtls.Config
	if sc.TLS.Enabled {
		reloader := tls.NewCertificateReloader(sc.TLS.CertFile, sc.TLS.KeyFile, sc.TLS.ReloadInterval)
		if err := reloader.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
		}
		cfg, err := tls.ServerConfig(sc.TLS, reloader)
		if err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
		tlsConfig = cfg
		s.reloader = reloader
	}

	ln, err := net.Listen("tcp", sc.ListenAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", sc.ListenAddress, err)
	}
	if tlsConfig != nil {
		srv.TLSConfig = tlsConfig
		ln = stdtls.NewListener(ln, tlsConfig)
	}

	s.http = srv
	s.listener = ln
	s.running = true

	s.logger.Info("gateway listening",
		"address", ln.Addr().String(),
		"tls_enabled", tlsConfig != nil,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()
	return errCh, nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh, err := s.Start(ctx)
	if err != nil {
		return err
	}

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown marks the process as draining so readiness fails, then stops
// accepting connections and waits up to server.shutdown_timeout for
// in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	srv := s.http
	s.mu.Unlock()

	s.opts.Health.SetDraining(true)

	timeout := s.cfg.Server.ShutdownTimeout
	s.logger.Info("initiating graceful shutdown", "timeout", timeout.String())
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Error("error during server shutdown", "error", err)
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.logger.Info("gateway stopped")
	return nil
}
