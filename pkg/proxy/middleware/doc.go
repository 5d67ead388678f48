// Package middleware provides the HTTP middleware shared by every gateway
// endpoint.
//
// # Middleware Chain
//
//	handler = Chain(mux,
//	    RecoveryMiddleware,  // outermost: turns panics into a generic 500
//	    TraceIDMiddleware,   // assigns X-Trace-Id and stores it in the context
//	    LoggingMiddleware,   // logs the completed request with its trace_id
//	)
//
// TraceIDMiddleware runs before LoggingMiddleware so that the completion
// log line carries the trace id. The gateway reuses the id from the context
// and sends it to the backend.
//
// # Trace ID
//
// The identifier is a UUIDv4:
//
//	X-Trace-Id: 550e8400-e29b-41d4-a716-446655440000
//
// A caller-supplied X-Trace-Id is kept only when it parses as a canonical
// UUID.
//
// # Logging
//
// LoggingMiddleware logs one line per request with method, path, status,
// latency_ms, bytes and remote_addr. The level is INFO for 2xx/3xx, WARN for
// 4xx and ERROR for 5xx.
package middleware
