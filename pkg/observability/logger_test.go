package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/specio/pkg/observability"
)

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var record map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	return record
}

func TestTracingHandlerInjectsTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	handler := observability.NewTracingHandler(
		slog.NewJSONHandler(&buf, nil), "specio", "test", observability.ModeCLI)

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)

	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	slog.New(handler).InfoContext(ctx, "read done")

	record := decodeRecord(t, &buf)
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", record["trace_id"])
	assert.Equal(t, "0102030405060708", record["span_id"])
	assert.Equal(t, "specio", record["service"])
	assert.Equal(t, "test", record["env"])
	assert.Equal(t, "cli", record["mode"])
}

func TestTracingHandlerWithoutSpan(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(observability.NewTracingHandler(
		slog.NewJSONHandler(&buf, nil), "specio", "", observability.ModeMCP))

	logger.WithGroup("reader").Info("hello", "format", "ampas")

	record := decodeRecord(t, &buf)
	assert.NotContains(t, record, "trace_id")
	assert.NotContains(t, record, "env")
	assert.Equal(t, "mcp", record["mode"])

	group, ok := record["reader"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ampas", group["format"])
}

func TestTracingHandlerMirrorsWarningsOntoSpan(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	var buf bytes.Buffer

	logger := slog.New(observability.NewTracingHandler(
		slog.NewJSONHandler(&buf, nil), "specio", "", observability.ModeCLI))

	ctx, span := tp.Tracer("test").Start(context.Background(), observability.SpanRead)
	logger.InfoContext(ctx, "quiet")
	logger.WarnContext(ctx, "unknown line ignored")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "log", spans[0].Events[0].Name)
}

func TestNewLoggerLevelAndFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.LogJSON = true
	cfg.LogLevel = slog.LevelWarn

	logger := observability.NewLogger(&buf, cfg)
	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")

	record := decodeRecord(t, &buf)
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "specio", record["service"])
}
