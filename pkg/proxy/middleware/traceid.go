package middleware

import (
	"net/http"

	"estech/inference-gateway/pkg/telemetry/logging"
)

// TraceIDHeader carries the request trace identifier in both directions.
const TraceIDHeader = "X-Trace-Id"

// TraceIDMiddleware assigns every request a trace identifier, stores it in
// the request context for logging and echoes it in the X-Trace-Id response
// header. A caller-supplied X-Trace-Id is kept when it is a canonical UUID;
// anything else is replaced.
//
// Example usage:
//
//	handler = TraceIDMiddleware(handler)
func TraceIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceIDHeader)
		if !logging.ValidTraceID(traceID) {
			traceID = logging.NewTraceID()
		}

		ctx := logging.WithTraceID(r.Context(), traceID)
		w.Header().Set(TraceIDHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
