package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		out = append(out, rec)
	}
	return out
}

func TestNew_AddsSpanIDsAndService(t *testing.T) {
	var buf bytes.Buffer
	lv := new(slog.LevelVar)
	logger := New(&buf, "task-service", lv)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "hello")
	logger.With("k", "v").Info("no span")

	recs := records(t, &buf)
	require.Len(t, recs, 2)
	require.Equal(t, "task-service", recs[0]["service"])
	require.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", recs[0]["trace_id"])
	require.Equal(t, "00f067aa0ba902b7", recs[0]["span_id"])
	require.NotContains(t, recs[1], "trace_id")
	require.Equal(t, "v", recs[1]["k"])
}

func TestNew_HonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	lv := new(slog.LevelVar)
	lv.Set(slog.LevelWarn)
	logger := New(&buf, "task-service", lv).WithGroup("req")

	logger.Info("dropped")
	logger.Warn("kept")
	require.Len(t, records(t, &buf), 1)

	lv.Set(slog.LevelDebug)
	logger.Debug("now kept")
	require.Len(t, records(t, &buf), 1)
}

func TestNewOtelHandler_DefaultsToInfo(t *testing.T) {
	h := NewOtelHandler(slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug}), nil)

	require.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	require.True(t, h.Enabled(context.Background(), slog.LevelInfo))
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel(" warning "))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
}
