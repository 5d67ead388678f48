package middleware

import "net/http"

// Chain applies middlewares so that the first one listed is the outermost.
//
//	handler = Chain(mux, RecoveryMiddleware, TraceIDMiddleware, LoggingMiddleware)
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
