package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

type contextKey int

const (
	requestKey contextKey = iota
	loggerKey
)

// request holds the per-request identifiers attached to every log record
// written with a context.
type request struct {
	correlationID string
	userID        string
}

// New creates a JSON logger writing to stdout.
func New(serviceName, level string) *slog.Logger {
	return NewWithWriter(serviceName, level, os.Stdout)
}

// NewWithWriter creates a JSON logger writing to w. Records logged with a
// context carry correlation_id, user_id, trace_id and span_id when present.
func NewWithWriter(serviceName, level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	})
	return slog.New(contextHandler{Handler: h}).With(slog.String("service", serviceName))
}

// ParseLevel accepts the slog level names ("debug", "INFO", "warn+2", ...)
// and falls back to info.
func ParseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// WithCorrelationID returns a new context with the correlation ID set.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	r := requestFrom(ctx)
	r.correlationID = id
	return context.WithValue(ctx, requestKey, r)
}

// CorrelationIDFromContext extracts the correlation ID from the context.
func CorrelationIDFromContext(ctx context.Context) string {
	return requestFrom(ctx).correlationID
}

// WithUserID returns a new context with the authenticated user ID set.
func WithUserID(ctx context.Context, id string) context.Context {
	r := requestFrom(ctx)
	r.userID = id
	return context.WithValue(ctx, requestKey, r)
}

// UserIDFromContext extracts the user ID from the context.
func UserIDFromContext(ctx context.Context) string {
	return requestFrom(ctx).userID
}

func requestFrom(ctx context.Context) request {
	r, _ := ctx.Value(requestKey).(request)
	return r
}

// NewContext returns a new context carrying l.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored by NewContext, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// contextHandler decorates records with request and trace identifiers taken
// from the context passed to the *Context logging methods.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	r := requestFrom(ctx)
	if r.correlationID != "" {
		rec.AddAttrs(slog.String("correlation_id", r.correlationID))
	}
	if r.userID != "" {
		rec.AddAttrs(slog.String("user_id", r.userID))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		rec.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, rec)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{Handler: h.Handler.WithGroup(name)}
}
