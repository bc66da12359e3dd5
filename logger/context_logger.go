package logger

import (
	"context"
	"log/slog"
	"time"
)

// ContextKey is the type for context keys used in logging
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	SessionIDKey ContextKey = "session_id"
	OperationKey ContextKey = "operation"

	// Storefront context keys, prefixed like OpenTelemetry attributes.
	WidgetEventKey ContextKey = "storefront.widget.event"
	SyncRunKey     ContextKey = "storefront.sync.run"
)

var contextKeys = []ContextKey{RequestIDKey, SessionIDKey, OperationKey, WidgetEventKey, SyncRunKey}

// GlobalContext is the global ContextLogger instance
var GlobalContext *ContextLogger

// ContextLogger wraps a slog.Logger to add context-aware logging
type ContextLogger struct {
	logger *slog.Logger
}

// NewContextLogger creates a new ContextLogger wrapping the provided logger
func NewContextLogger(logger *slog.Logger) *ContextLogger {
	return &ContextLogger{logger: logger}
}

// WithContext adds context values to log entries and returns a new logger
func (cl *ContextLogger) WithContext(ctx context.Context) *slog.Logger {
	args := make([]any, 0, len(contextKeys)*2)
	for _, key := range contextKeys {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			args = append(args, string(key), v)
		}
	}
	return cl.logger.With(args...)
}

// LogDuration logs an operation completion with duration in milliseconds
func (cl *ContextLogger) LogDuration(ctx context.Context, operation string, durationMs int64) {
	cl.WithContext(ctx).Info("operation completed",
		"operation", operation,
		"duration_ms", durationMs,
	)
}

// LogError logs an operation failure with error details
func (cl *ContextLogger) LogError(ctx context.Context, operation string, err error) {
	cl.WithContext(ctx).Error("operation failed",
		"operation", operation,
		"error", err,
	)
}

// LogDurationTime is a convenience function that takes time.Duration
func (cl *ContextLogger) LogDurationTime(ctx context.Context, operation string, duration time.Duration) {
	cl.LogDuration(ctx, operation, duration.Milliseconds())
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, OperationKey, operation)
}

// WithWidgetEvent tags logs with the range widget event being handled.
func WithWidgetEvent(ctx context.Context, event string) context.Context {
	return context.WithValue(ctx, WidgetEventKey, event)
}

func WithSyncRun(ctx context.Context, run string) context.Context {
	return context.WithValue(ctx, SyncRunKey, run)
}

// FromContext returns a context-aware logger, falling back to slog.Default
// before Init has run.
func FromContext(ctx context.Context) *slog.Logger {
	if GlobalContext == nil {
		return slog.Default()
	}
	return GlobalContext.WithContext(ctx)
}
