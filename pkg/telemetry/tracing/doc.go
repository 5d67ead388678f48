// Package tracing provides OpenTelemetry tracing for the gateway.
//
// Each inbound request gets a "gateway.request" span; forwarding attempts
// are recorded as events on it and the W3C trace context is injected into
// every outbound call, so backend spans join the caller's trace. The
// gateway's own trace identifier (X-Trace-Id) is attached as the
// gateway.trace_id attribute to correlate logs and spans.
//
// # Export
//
// Spans are batched to an OTLP gRPC collector. Sampling is parent-based
// with a configurable ratio. When tracing is disabled a noop tracer is used
// and propagation still works for callers that send traceparent.
//
// # Usage
//
//	tracer, err := tracing.New(cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "gateway.request")
//	defer span.End()
//	tracing.Inject(ctx, outbound.Header)
package tracing
