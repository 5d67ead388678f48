package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"estech/inference-gateway/pkg/admission"
	"estech/inference-gateway/pkg/config"
	"estech/inference-gateway/pkg/forward"
	"estech/inference-gateway/pkg/gateway"
	"estech/inference-gateway/pkg/proxy/handlers"
	"estech/inference-gateway/pkg/resilience"
	"estech/inference-gateway/pkg/routing"
	"estech/inference-gateway/pkg/security/auth"
	"estech/inference-gateway/pkg/security/secrets"
	"estech/inference-gateway/pkg/server"
	"estech/inference-gateway/pkg/telemetry/health"
	"estech/inference-gateway/pkg/telemetry/metrics"
	"estech/inference-gateway/pkg/telemetry/tracing"
)

// app owns every long-lived component of a running gateway.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	secrets  *secrets.Resolver
	tracer   *tracing.Tracer
	recorder *metrics.Recorder
	source   routing.Source
	store    *routing.Store
	breaker  *resilience.Breaker
	gateway  *gateway.Gateway
	health   *health.Checker
	server   *server.Server

	watcher   *routing.Watcher
	scheduler *routing.Scheduler
}

// newApp wires the components described by cfg. The route table is loaded
// once here; a gateway that cannot load its routes does not start.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.close(context.Background())
		}
	}()

	a.secrets, err = secrets.NewFromConfig(cfg.Security.Secrets)
	if err != nil {
		return nil, fmt.Errorf("secrets: %w", err)
	}
	if err := a.secrets.ResolveAuth(ctx, &cfg.Security.Auth); err != nil {
		return nil, fmt.Errorf("resolving credentials: %w", err)
	}

	validator, err := auth.NewValidator(cfg.Security.Auth)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	if cfg.Security.Auth.Mode == "noop" {
		logger.Warn("authentication is in noop mode, any bearer token is accepted")
	}
	authGate := auth.NewGate(validator)

	a.tracer, err = tracing.New(cfg.Telemetry.Tracing)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}
	a.recorder = metrics.NewRecorder(cfg.Telemetry.Metrics, prometheus.NewRegistry())

	a.source, err = routing.NewSource(cfg.Routes)
	if err != nil {
		return nil, fmt.Errorf("routes: %w", err)
	}
	table, err := a.source.Load(ctx)
	a.recordReload(table, err)
	if err != nil {
		return nil, fmt.Errorf("loading routes from %s: %w", a.source.Name(), err)
	}
	a.store = routing.NewStore(table)
	logger.Info("route table loaded", "source", a.source.Name(), "routes", table.Len())

	rc := cfg.Resilience
	a.breaker = resilience.NewBreaker(resilience.BreakerConfig{
		FailureRateThreshold: rc.FailureRateThreshold,
		MinimumCalls:         rc.MinimumCalls,
		WindowSize:           rc.WindowSize,
		WaitDurationInOpen:   rc.WaitDurationInOpen,
		HalfOpenMaxCalls:     rc.HalfOpenMaxCalls,
		Logger:               logger,
		OnStateChange: func(_, to resilience.State) {
			a.recorder.SetCircuitState(to.String())
		},
	})
	a.recorder.SetCircuitState(resilience.StateClosed.String())

	a.gateway = gateway.New(gateway.Deps{
		Config:       cfg.Gateway,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Auth:         authGate,
		Admission:    admission.NewGate(cfg.Gateway.MaxConcurrent),
		Router:       routing.NewRouter(a.store),
		Client:       forward.NewClient(forward.Config{Timeout: cfg.Gateway.Timeout}),
		Resilience: resilience.NewDecorator(a.breaker, resilience.RetryConfig{
			MaxAttempts: rc.MaxAttempts,
			Delay:       rc.RetryDelay,
		}),
		Metrics: a.recorder,
		Tracer:  a.tracer,
		Logger:  logger,
	})

	a.health = health.New(0)
	a.health.Register("routes", health.RoutesCheck(func() int { return a.store.Load().Len() }))

	a.server, err = server.New(server.Options{
		Config:  cfg,
		Gateway: a.gateway,
		Auth:    authGate,
		Routes: &handlers.RoutesHandler{
			Store:    a.store,
			Source:   a.source,
			OnReload: a.recordReload,
		},
		Metrics: a.recorder,
		Health:  a.health,
		Build:   server.BuildInfo{Version: Version, Commit: GitCommit, BuildTime: BuildDate},
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) recordReload(t *routing.Table, err error) {
	n := 0
	if t != nil {
		n = t.Len()
	}
	a.recorder.RecordRouteReload(n, err)
}

// startReloaders starts the route file watcher and the reload schedule
// when configured.
func (a *app) startReloaders(ctx context.Context) error {
	rc := a.cfg.Routes
	if rc.Watch {
		if rc.Source != "file" {
			a.logger.Warn("routes.watch ignored for non-file source", "source", rc.Source)
		} else {
			a.watcher = routing.NewWatcher(rc.FilePath, a.source, a.store, a.logger)
			a.watcher.OnReload = a.recordReload
			if err := a.watcher.Start(ctx); err != nil {
				return fmt.Errorf("route watcher: %w", err)
			}
		}
	}
	if rc.ReloadSchedule != "" {
		a.scheduler = routing.NewScheduler(rc.ReloadSchedule, a.source, a.store, a.logger)
		a.scheduler.OnReload = a.recordReload
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("route scheduler: %w", err)
		}
		if next := a.scheduler.NextRun(); next != nil {
			a.logger.Debug("route reload scheduled", "next_run", next)
		}
	}
	return nil
}

// close stops background work and flushes telemetry.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.watcher != nil {
		errs = append(errs, a.watcher.Stop())
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.tracer != nil {
		errs = append(errs, a.tracer.Shutdown(ctx))
	}
	if a.secrets != nil {
		errs = append(errs, a.secrets.Close())
	}
	return errors.Join(errs...)
}
