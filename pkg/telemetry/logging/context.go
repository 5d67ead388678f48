package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Context keys for common log fields.
type contextKey string

const (
	// TraceIDKey is the context key for the gateway trace identifier.
	TraceIDKey contextKey = "trace_id"

	// UserKey is the context key for the authenticated subject.
	UserKey contextKey = "user"

	// ServiceKey is the context key for the resolved backend service.
	ServiceKey contextKey = "service"
)

// NewTraceID returns a random UUIDv4 string.
func NewTraceID() string {
	return uuid.NewString()
}

// ValidTraceID reports whether id is a canonical UUID and so acceptable as
// a caller-supplied trace identifier.
func ValidTraceID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithUser adds the authenticated subject to the context.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetUser retrieves the authenticated subject from the context.
func GetUser(ctx context.Context) string {
	if user, ok := ctx.Value(UserKey).(string); ok {
		return user
	}
	return ""
}

// WithService adds the backend service name to the context.
func WithService(ctx context.Context, service string) context.Context {
	return context.WithValue(ctx, ServiceKey, service)
}

// GetService retrieves the backend service name from the context.
func GetService(ctx context.Context) string {
	if service, ok := ctx.Value(ServiceKey).(string); ok {
		return service
	}
	return ""
}

// contextAttrs extracts the known fields from ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	if v := GetTraceID(ctx); v != "" {
		attrs = append(attrs, slog.String(string(TraceIDKey), v))
	}
	if v := GetUser(ctx); v != "" {
		attrs = append(attrs, slog.String(string(UserKey), v))
	}
	if v := GetService(ctx); v != "" {
		attrs = append(attrs, slog.String(string(ServiceKey), v))
	}
	return attrs
}

// ContextHandler is a slog.Handler that adds the trace ID, user and service
// stored in the record's context.
type ContextHandler struct {
	next slog.Handler
}

// NewContextHandler wraps next.
func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{next: next}
}

// Enabled implements slog.Handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := contextAttrs(ctx); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.next.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name)}
}
