package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"estech/inference-gateway/pkg/resilience"
	"estech/inference-gateway/pkg/routing"
	"estech/inference-gateway/pkg/security/auth"
)

// CircuitHandler serves the circuit breaker status and the operator reset.
//
//	GET  /admin/circuit        -> current snapshot
//	POST /admin/circuit/reset  -> force CLOSED, returns the new snapshot
type CircuitHandler struct {
	Breaker *resilience.Breaker
}

// NewCircuitHandler creates a handler for b.
func NewCircuitHandler(b *resilience.Breaker) *CircuitHandler {
	return &CircuitHandler{Breaker: b}
}

// Status implements the GET endpoint.
func (h *CircuitHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.Breaker.Snapshot())
}

// Reset implements the POST endpoint.
func (h *CircuitHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	before := h.Breaker.State()
	h.Breaker.Reset()

	subject := ""
	if p, ok := auth.PrincipalFrom(r.Context()); ok {
		subject = p.Subject
	}
	slog.WarnContext(r.Context(), "circuit breaker reset by operator",
		"previous_state", before.String(),
		"subject", subject,
	)

	writeJSON(w, http.StatusOK, h.Breaker.Snapshot())
}

// RoutesHandler lists the route table in effect and reloads it on demand.
//
//	GET  /admin/routes         -> {"count": n, "routes": {name: base_url}}
//	POST /admin/routes/reload  -> reload from Source and swap atomically
type RoutesHandler struct {
	Store  *routing.Store
	Source routing.Source

	// OnReload, if set, observes every reload attempt.
	OnReload func(*routing.Table, error)
}

type routesResponse struct {
	Count    int               `json:"count"`
	Routes   map[string]string `json:"routes"`
	Source   string            `json:"source,omitempty"`
	Reloaded string            `json:"reloaded_at,omitempty"`
}

// List implements the GET endpoint.
func (h *RoutesHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.describe(h.Store.Load(), ""))
}

// Reload implements the POST endpoint. A failed reload keeps the current
// table and returns 500 with the loader error.
func (h *RoutesHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.Source == nil {
		http.Error(w, "no route source configured", http.StatusInternalServerError)
		return
	}

	table, err := routing.Reload(r.Context(), h.Source, h.Store)
	if h.OnReload != nil {
		h.OnReload(table, err)
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "route reload failed", "source", h.Source.Name(), "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	slog.InfoContext(r.Context(), "routes reloaded by operator",
		"source", h.Source.Name(),
		"routes", table.Len(),
	)
	writeJSON(w, http.StatusOK, h.describe(table, time.Now().UTC().Format(time.RFC3339)))
}

func (h *RoutesHandler) describe(t *routing.Table, reloadedAt string) routesResponse {
	resp := routesResponse{
		Count:    t.Len(),
		Routes:   make(map[string]string, t.Len()),
		Reloaded: reloadedAt,
	}
	for _, name := range t.Names() {
		base, _ := t.Lookup(name)
		resp.Routes[name] = base
	}
	if h.Source != nil {
		resp.Source = h.Source.Name()
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
