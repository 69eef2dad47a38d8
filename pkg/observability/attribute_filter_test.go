package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/specio/pkg/observability"
)

func filteredAttrs(t *testing.T, logger *slog.Logger, attrs ...attribute.KeyValue) map[string]any {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(observability.NewAttributeFilter(sdktrace.NewSimpleSpanProcessor(exporter), logger)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	_, span := tp.Tracer("test").Start(context.Background(), observability.SpanRead)
	span.SetAttributes(attrs...)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	out := map[string]any{}
	for _, kv := range spans[0].Attributes {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}

	return out
}

func TestAttributeFilterKeepsAllowedNamespaces(t *testing.T) {
	t.Parallel()

	attrs := filteredAttrs(t, nil,
		attribute.String("specio.format", "ampas"),
		attribute.Int("specio.samples", 81),
		attribute.String("mcp.tool", "spectral_read"),
		attribute.String("error.type", "malformed-row"),
		attribute.Bool("error", true),
	)

	assert.Equal(t, map[string]any{
		"specio.format":  "ampas",
		"specio.samples": int64(81),
		"mcp.tool":       "spectral_read",
		"error.type":     "malformed-row",
		"error":          true,
	}, attrs)
}

func TestAttributeFilterDropsBlockedAndUnknown(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, nil))

	attrs := filteredAttrs(t, logger,
		attribute.String("specio.path", "/home/someone/private.spd"),
		attribute.String("specio.content", "380 0.1"),
		attribute.String("user.name", "someone"),
		attribute.String("specio.source", "private.spd"),
	)

	assert.Equal(t, map[string]any{"specio.source": "private.spd"}, attrs)
	assert.Contains(t, buf.String(), "key=specio.path")
	assert.Contains(t, buf.String(), "key=user.name")
}
