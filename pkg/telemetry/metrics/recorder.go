package metrics

import (
	"time"

	"estech/inference-gateway/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// circuitStates are the label values of the circuit_state gauge.
var circuitStates = []string{"closed", "open", "half_open"}

// Recorder records gateway request outcomes, forwarding attempts, admission
// occupancy and circuit breaker state.
//
// Metrics (with the default namespace and subsystem):
//   - gateway_run_requests_total: completed requests by outcome
//   - gateway_run_request_duration_seconds: end-to-end latency by outcome
//   - gateway_run_requests_in_flight: requests currently admitted
//   - gateway_run_forward_attempts_total: forwarding attempts by breaker outcome
//   - gateway_run_circuit_state: 1 for the current breaker state, 0 otherwise
//   - gateway_run_circuit_transitions_total: breaker transitions by target state
//   - gateway_run_route_reloads_total: route table reloads by result
//   - gateway_run_routes: services in the active route table
//
// A nil *Recorder and a disabled Recorder are valid and record nothing.
// All methods are safe for concurrent use.
type Recorder struct {
	enabled  bool
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
	attemptsTotal   *prometheus.CounterVec
	circuitState    *prometheus.GaugeVec
	transitions     *prometheus.CounterVec
	routeReloads    *prometheus.CounterVec
	routes          prometheus.Gauge
}

// NewRecorder creates a Recorder and registers its metrics with registry.
// If registry is nil a new registry is created.
//
// Example:
//
//	rec := metrics.NewRecorder(cfg.Telemetry.Metrics, prometheus.NewRegistry())
//	rec.RecordOutcome("success", 120*time.Millisecond)
func NewRecorder(cfg config.MetricsConfig, registry *prometheus.Registry) *Recorder {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = config.DefaultRequestDurationBuckets
	}

	r := &Recorder{
		enabled:  cfg.IsEnabled(),
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of gateway requests by outcome",
			},
			[]string{"outcome"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "End-to-end gateway request latency in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"outcome"},
		),

		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_in_flight",
				Help:      "Number of requests currently holding an admission slot",
			},
		),

		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "forward_attempts_total",
				Help:      "Total number of forwarding attempts by breaker outcome",
			},
			[]string{"outcome"},
		),

		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "circuit_state",
				Help:      "Circuit breaker state (1 for the current state)",
			},
			[]string{"state"},
		),

		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "circuit_transitions_total",
				Help:      "Total number of circuit breaker transitions by target state",
			},
			[]string{"state"},
		),

		routeReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "route_reloads_total",
				Help:      "Total number of route table reloads by result",
			},
			[]string{"result"},
		),

		routes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "routes",
				Help:      "Number of services in the active route table",
			},
		),
	}

	registry.MustRegister(
		r.requestsTotal,
		r.requestDuration,
		r.inFlight,
		r.attemptsTotal,
		r.circuitState,
		r.transitions,
		r.routeReloads,
		r.routes,
	)

	// Start closed so the gauge is present before the first transition
	r.circuitState.WithLabelValues("closed").Set(1)
	for _, s := range circuitStates[1:] {
		r.circuitState.WithLabelValues(s).Set(0)
	}

	return r
}

// RecordOutcome records a completed request.
//
// Parameters:
//   - outcome: outcome class (e.g. "success", "timeout", "circuit_open")
//   - elapsed: time from request entry to response
func (r *Recorder) RecordOutcome(outcome string, elapsed time.Duration) {
	if r == nil || !r.enabled {
		return
	}
	r.requestsTotal.WithLabelValues(outcome).Inc()
	r.requestDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// SetInFlight sets the number of admitted requests.
func (r *Recorder) SetInFlight(n int64) {
	if r == nil || !r.enabled {
		return
	}
	r.inFlight.Set(float64(n))
}

// RecordAttempt records one forwarding attempt by its breaker outcome
// ("success", "failure", "ignored").
func (r *Recorder) RecordAttempt(outcome string) {
	if r == nil || !r.enabled {
		return
	}
	r.attemptsTotal.WithLabelValues(outcome).Inc()
}

// SetCircuitState marks state as the current breaker state and counts the
// transition.
func (r *Recorder) SetCircuitState(state string) {
	if r == nil || !r.enabled {
		return
	}
	for _, s := range circuitStates {
		if s == state {
			r.circuitState.WithLabelValues(s).Set(1)
		} else {
			r.circuitState.WithLabelValues(s).Set(0)
		}
	}
	r.transitions.WithLabelValues(state).Inc()
}

// RecordRouteReload records a route table reload. On success routes is the
// size of the new table.
func (r *Recorder) RecordRouteReload(routes int, err error) {
	if r == nil || !r.enabled {
		return
	}
	if err != nil {
		r.routeReloads.WithLabelValues("error").Inc()
		return
	}
	r.routeReloads.WithLabelValues("success").Inc()
	r.routes.Set(float64(routes))
}

// Registry returns the Prometheus registry used by this recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
