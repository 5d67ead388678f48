// Package telemetry groups the gateway's observability packages.
//
// # Components
//
//   - logging: slog construction, trace_id/user/service context injection
//     and credential redaction
//   - metrics: Prometheus outcome counters, latency histogram, in-flight
//     and circuit state gauges, route reload counters
//   - tracing: OpenTelemetry spans for the pipeline and each forwarding
//     attempt, W3C context propagation to backends
//   - health: liveness, readiness (route table loaded, not draining) and
//     version endpoints
//
// # Usage
//
//	logger, err := logging.New(logging.ConfigFrom(cfg.Telemetry.Logging))
//	if err != nil {
//		return err
//	}
//	slog.SetDefault(logger)
//
//	tracer, err := tracing.New(cfg.Telemetry.Tracing)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	recorder := metrics.NewRecorder(cfg.Telemetry.Metrics, prometheus.NewRegistry())
//	mux.Handle(cfg.Telemetry.Metrics.Path, recorder.Handler())
package telemetry
