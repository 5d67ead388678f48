package auth

import (
	"log/slog"
	"net/http"
)

// Middleware wraps an HTTP handler with bearer authentication. It is used
// for operator endpoints; the dispatch pipeline calls Authenticate directly
// so that the outcome is recorded with the request metrics.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := g.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			slog.WarnContext(r.Context(), "authentication failed",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
			)
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		slog.DebugContext(r.Context(), "caller authenticated",
			"subject", p.Subject,
			"method", p.Method,
			"path", r.URL.Path,
		)

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}
