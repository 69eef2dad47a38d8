package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// Span names shared by every reader front end.
const (
	SpanBatch  = "specio.batch"
	SpanRead   = "specio.read"
	SpanDecode = "specio.read.decode"
	SpanParse  = "specio.read.parse"
)

// phaseSpans are the per-read phases hidden unless TraceVerbose is set. A
// batch over thousands of files would otherwise triple its span count.
var phaseSpans = map[string]bool{
	SpanDecode: true,
	SpanParse:  true,
}

// filteringTracerProvider hands out tracers that replace phase spans with
// no-op spans and delegate everything else.
type filteringTracerProvider struct {
	embedded.TracerProvider

	delegate trace.TracerProvider
	noop     trace.TracerProvider
}

// NewFilteringTracerProvider wraps delegate so that the decode and parse
// phase spans are dropped while file and batch spans are kept.
func NewFilteringTracerProvider(delegate trace.TracerProvider) trace.TracerProvider {
	return &filteringTracerProvider{
		delegate: delegate,
		noop:     nooptrace.NewTracerProvider(),
	}
}

// Tracer returns a filtering tracer for name.
func (f *filteringTracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return &filteringTracer{
		delegate: f.delegate.Tracer(name, opts...),
		noop:     f.noop.Tracer(name, opts...),
	}
}

type filteringTracer struct {
	embedded.Tracer

	delegate trace.Tracer
	noop     trace.Tracer
}

// Start returns a no-op span for phase span names.
func (f *filteringTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if phaseSpans[name] {
		return f.noop.Start(ctx, name, opts...)
	}

	return f.delegate.Start(ctx, name, opts...)
}
