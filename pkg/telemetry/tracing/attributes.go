package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys. Gateway-specific keys use the "gateway." namespace.
const (
	AttrTraceID      = "gateway.trace_id"
	AttrService      = "gateway.service"
	AttrPath         = "gateway.path"
	AttrMethod       = "gateway.method"
	AttrOutcome      = "gateway.outcome"
	AttrAttempt      = "gateway.attempt"
	AttrCircuitState = "gateway.circuit_state"
	AttrUser         = "gateway.user"
	AttrErrorMessage = "error.message"
)

// SetDispatchAttributes records the normalized request on span.
func SetDispatchAttributes(span trace.Span, service, method, path string) {
	span.SetAttributes(
		attribute.String(AttrService, service),
		attribute.String(AttrMethod, method),
		attribute.String(AttrPath, path),
	)
}

// SetOutcome records the request's outcome class.
func SetOutcome(span trace.Span, outcome string) {
	span.SetAttributes(attribute.String(AttrOutcome, outcome))
}

// AddAttemptEvent records one forwarding attempt as a span event.
func AddAttemptEvent(span trace.Span, attempt int, outcome string) {
	span.AddEvent("forward.attempt", trace.WithAttributes(
		attribute.Int(AttrAttempt, attempt),
		attribute.String(AttrOutcome, outcome),
	))
}
