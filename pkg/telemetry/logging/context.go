package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for HTTP request IDs.
	RequestIDKey contextKey = "request_id"

	// SessionIDKey is the context key for validation session IDs.
	SessionIDKey contextKey = "session_id"

	// ManifestKey is the context key for the manifest being processed.
	ManifestKey contextKey = "manifest"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithSessionID adds a validation session ID to the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// GetSessionID retrieves the validation session ID from the context.
func GetSessionID(ctx context.Context) string {
	if v, ok := ctx.Value(SessionIDKey).(string); ok {
		return v
	}
	return ""
}

// WithManifest adds the manifest source (file name or upload name) to the context.
func WithManifest(ctx context.Context, manifest string) context.Context {
	return context.WithValue(ctx, ManifestKey, manifest)
}

// GetManifest retrieves the manifest source from the context.
func GetManifest(ctx context.Context) string {
	if v, ok := ctx.Value(ManifestKey).(string); ok {
		return v
	}
	return ""
}

// contextAttrs returns the log fields carried by ctx, including the trace
// and span IDs of an active OpenTelemetry span.
func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var attrs []slog.Attr
	if v := GetRequestID(ctx); v != "" {
		attrs = append(attrs, slog.String("request_id", v))
	}
	if v := GetSessionID(ctx); v != "" {
		attrs = append(attrs, slog.String("session_id", v))
	}
	if v := GetManifest(ctx); v != "" {
		attrs = append(attrs, slog.String("manifest", v))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return attrs
}

// ContextHandler wraps a slog.Handler and adds the fields carried by the
// record's context. Any *slog.Logger built on it picks up request, session
// and trace IDs from the *Context logging methods.
type ContextHandler struct {
	slog.Handler
}

// NewContextHandler wraps h.
func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := contextAttrs(ctx); len(attrs) > 0 {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}
