package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// OtelHandler stamps the active span's ids on every record it lets through.
type OtelHandler struct {
	next  slog.Handler
	level slog.Leveler
}

func NewOtelHandler(next slog.Handler, level slog.Leveler) *OtelHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &OtelHandler{next: next, level: level}
}

func (h *OtelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level() && h.next.Enabled(ctx, level)
}

func (h *OtelHandler) Handle(ctx context.Context, r slog.Record) error {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}

	return h.next.Handle(ctx, r)
}

func (h *OtelHandler) WithGroup(name string) slog.Handler {
	return NewOtelHandler(h.next.WithGroup(name), h.level)
}

func (h *OtelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewOtelHandler(h.next.WithAttrs(attrs), h.level)
}

// New builds a JSON logger tagged with the service name. level is shared, so
// changing it later affects every logger derived from the result.
func New(w io.Writer, serviceName string, level *slog.LevelVar) *slog.Logger {
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewOtelHandler(jsonHandler, level)).With(slog.String("service", serviceName))
}

// Setup installs the default logger for a binary and returns its level so
// callers can adjust it at runtime.
func Setup(serviceName, level string) *slog.LevelVar {
	lv := new(slog.LevelVar)
	lv.Set(ParseLevel(level))

	slog.SetDefault(New(os.Stdout, serviceName, lv))
	slog.Info("Logger initialized", "level", lv.Level().String())

	return lv
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
