package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricReadsTotal    = "specio.reads.total"
	metricReadDuration  = "specio.read.duration.seconds"
	metricSamplesTotal  = "specio.samples.total"
	metricProblemsTotal = "specio.problems.total"
	metricReadsInflight = "specio.reads.inflight"

	attrFormat = "format"
	attrStatus = "status"
	attrKind   = "kind"
)

// Read outcomes recorded under the status attribute.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// durationBucketBoundaries covers 100µs to 10s: a small spectrum parses in
// well under a millisecond, a compressed multi-megabyte table in seconds.
var durationBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 10}

// ReadMetrics holds the OTel instruments for dataset reads.
type ReadMetrics struct {
	readsTotal    metric.Int64Counter
	readDuration  metric.Float64Histogram
	samplesTotal  metric.Int64Counter
	problemsTotal metric.Int64Counter
	readsInflight metric.Int64UpDownCounter
}

// NewReadMetrics creates the read instruments on mt.
func NewReadMetrics(mt metric.Meter) (*ReadMetrics, error) {
	readsTotal, err := mt.Int64Counter(metricReadsTotal,
		metric.WithDescription("Datasets read, by format and status"),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricReadsTotal, err)
	}

	readDuration, err := mt.Float64Histogram(metricReadDuration,
		metric.WithDescription("Time to read and validate one dataset"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricReadDuration, err)
	}

	samplesTotal, err := mt.Int64Counter(metricSamplesTotal,
		metric.WithDescription("Samples loaded from successfully read datasets"),
		metric.WithUnit("{sample}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSamplesTotal, err)
	}

	problemsTotal, err := mt.Int64Counter(metricProblemsTotal,
		metric.WithDescription("Problems reported by failed reads, by kind"),
		metric.WithUnit("{problem}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricProblemsTotal, err)
	}

	inflight, err := mt.Int64UpDownCounter(metricReadsInflight,
		metric.WithDescription("Reads currently in progress"),
		metric.WithUnit("{read}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricReadsInflight, err)
	}

	return &ReadMetrics{
		readsTotal:    readsTotal,
		readDuration:  readDuration,
		samplesTotal:  samplesTotal,
		problemsTotal: problemsTotal,
		readsInflight: inflight,
	}, nil
}

// RecordRead records one finished read. samples is only counted for
// successful reads.
func (rm *ReadMetrics) RecordRead(ctx context.Context, format, status string, duration time.Duration, samples int) {
	attrs := metric.WithAttributes(
		attribute.String(attrFormat, format),
		attribute.String(attrStatus, status),
	)

	rm.readsTotal.Add(ctx, 1, attrs)
	rm.readDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusOK && samples > 0 {
		rm.samplesTotal.Add(ctx, int64(samples), metric.WithAttributes(attribute.String(attrFormat, format)))
	}
}

// RecordProblems counts the problems of a failed read, one per kind entry.
func (rm *ReadMetrics) RecordProblems(ctx context.Context, kinds []string) {
	for _, kind := range kinds {
		rm.problemsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrKind, kind)))
	}
}

// TrackInflight increments the in-flight gauge and returns its decrement.
func (rm *ReadMetrics) TrackInflight(ctx context.Context) func() {
	rm.readsInflight.Add(ctx, 1)

	return func() {
		rm.readsInflight.Add(ctx, -1)
	}
}
