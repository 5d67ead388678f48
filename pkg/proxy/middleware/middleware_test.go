package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"estech/inference-gateway/pkg/telemetry/logging"
)

func TestTraceIDMiddleware(t *testing.T) {
	const supplied = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

	tests := []struct {
		name     string
		header   string
		wantKept bool
	}{
		{"generated", "", false},
		{"valid supplied", supplied, true},
		{"garbage supplied", "req_1234abcd", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var inCtx string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				inCtx = logging.GetTraceID(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/v1/run", nil)
			if tt.header != "" {
				req.Header.Set(TraceIDHeader, tt.header)
			}
			w := httptest.NewRecorder()
			TraceIDMiddleware(handler).ServeHTTP(w, req)

			got := w.Header().Get(TraceIDHeader)
			if !logging.ValidTraceID(got) {
				t.Fatalf("response trace id %q is not a UUID", got)
			}
			if got != inCtx {
				t.Errorf("context trace id = %q, header = %q", inCtx, got)
			}
			if tt.wantKept && got != tt.header {
				t.Errorf("trace id = %q, want supplied %q", got, tt.header)
			}
			if !tt.wantKept && got == tt.header {
				t.Errorf("trace id %q should have been replaced", got)
			}
		})
	}
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"success", http.StatusOK, "INFO"},
		{"client error", http.StatusTooManyRequests, "WARN"},
		{"server error", http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			prev := slog.Default()
			slog.SetDefault(slog.New(logging.NewContextHandler(slog.NewJSONHandler(&buf, nil))))
			defer slog.SetDefault(prev)

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if GetStartTime(r.Context()).IsZero() {
					t.Error("start time missing from context")
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			})

			req := httptest.NewRequest(http.MethodPost, "/v1/run", nil)
			Chain(handler, TraceIDMiddleware, LoggingMiddleware).ServeHTTP(httptest.NewRecorder(), req)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["msg"] != "request completed" {
				t.Errorf("msg = %v", entry["msg"])
			}
			if entry["status"] != float64(tt.status) {
				t.Errorf("status = %v, want %d", entry["status"], tt.status)
			}
			if entry["bytes"] != float64(4) {
				t.Errorf("bytes = %v, want 4", entry["bytes"])
			}
			if id, _ := entry["trace_id"].(string); !logging.ValidTraceID(id) {
				t.Errorf("trace_id = %v", entry["trace_id"])
			}
			if _, ok := entry["latency_ms"]; !ok {
				t.Error("latency_ms missing")
			}
		})
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	final := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") })

	Chain(final, mw("a"), mw("b")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"a", "b", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
