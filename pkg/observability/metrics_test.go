package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/specio/pkg/observability"
)

func setupReadMetrics(t *testing.T) (*observability.ReadMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	rm, err := observability.NewReadMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return rm, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for i := range rm.ScopeMetrics {
		for j := range rm.ScopeMetrics[i].Metrics {
			if rm.ScopeMetrics[i].Metrics[j].Name == name {
				return &rm.ScopeMetrics[i].Metrics[j]
			}
		}
	}

	return nil
}

func sumPoints(t *testing.T, m *metricdata.Metrics) []metricdata.DataPoint[int64] {
	t.Helper()
	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	return sum.DataPoints
}

func TestReadMetricsRecordRead(t *testing.T) {
	t.Parallel()

	rm, reader := setupReadMetrics(t)
	ctx := context.Background()

	rm.RecordRead(ctx, "ampas", observability.StatusOK, 2*time.Millisecond, 81)
	rm.RecordRead(ctx, "ampas", observability.StatusOK, time.Millisecond, 19)
	rm.RecordRead(ctx, "cgats", observability.StatusError, time.Millisecond, 5)

	data := collect(t, reader)

	reads := sumPoints(t, findMetric(data, "specio.reads.total"))
	assert.Len(t, reads, 2)

	for _, dp := range reads {
		status, _ := dp.Attributes.Value(attribute.Key("status"))
		if status.AsString() == observability.StatusOK {
			assert.Equal(t, int64(2), dp.Value)
		} else {
			assert.Equal(t, int64(1), dp.Value)
		}
	}

	samples := sumPoints(t, findMetric(data, "specio.samples.total"))
	require.Len(t, samples, 1)
	assert.Equal(t, int64(100), samples[0].Value)

	require.NotNil(t, findMetric(data, "specio.read.duration.seconds"))
}

func TestReadMetricsRecordProblems(t *testing.T) {
	t.Parallel()

	rm, reader := setupReadMetrics(t)

	rm.RecordProblems(context.Background(), []string{"malformed-row", "malformed-row", "range-mismatch"})

	points := sumPoints(t, findMetric(collect(t, reader), "specio.problems.total"))
	require.Len(t, points, 2)

	byKind := map[string]int64{}
	for _, dp := range points {
		kind, _ := dp.Attributes.Value(attribute.Key("kind"))
		byKind[kind.AsString()] = dp.Value
	}

	assert.Equal(t, map[string]int64{"malformed-row": 2, "range-mismatch": 1}, byKind)
}

func TestReadMetricsTrackInflight(t *testing.T) {
	t.Parallel()

	rm, reader := setupReadMetrics(t)

	done := rm.TrackInflight(context.Background())

	points := sumPoints(t, findMetric(collect(t, reader), "specio.reads.inflight"))
	require.Len(t, points, 1)
	assert.Equal(t, int64(1), points[0].Value)

	done()

	points = sumPoints(t, findMetric(collect(t, reader), "specio.reads.inflight"))
	require.Len(t, points, 1)
	assert.Equal(t, int64(0), points[0].Value)
}
