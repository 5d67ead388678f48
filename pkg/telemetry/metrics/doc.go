// Package metrics provides Prometheus metrics for the gateway.
//
// # Overview
//
// A Recorder holds every gateway metric on its own registry. The gateway
// records one outcome and latency per request regardless of where the
// pipeline stopped, the resilience layer records every forwarding attempt
// and circuit transition, and the admission gate reports its occupancy.
//
// # Usage
//
//	rec := metrics.NewRecorder(cfg.Telemetry.Metrics, prometheus.NewRegistry())
//
//	rec.SetInFlight(gate.InFlight())
//	rec.RecordAttempt("failure")
//	rec.SetCircuitState("open")
//	rec.RecordOutcome("circuit_open", 3*time.Millisecond)
//
//	mux.Handle(cfg.Telemetry.Metrics.Path, rec.Handler())
//
// # Labels
//
// Label values are drawn from small fixed sets (outcome classes, breaker
// states, reload results), so cardinality is bounded without a limiter.
// Service names are deliberately not used as labels.
//
// # Prometheus Endpoint
//
//	# HELP gateway_run_requests_total Total number of gateway requests by outcome
//	# TYPE gateway_run_requests_total counter
//	gateway_run_requests_total{outcome="success"} 1234
//	gateway_run_requests_total{outcome="admission_rejected"} 7
//
// Recording never fails and never blocks a response.
package metrics
