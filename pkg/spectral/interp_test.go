package spectral_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/specio/pkg/spectral"
)

func assemble(t *testing.T, b *spectral.SeriesBuilder) *spectral.Series {
	t.Helper()

	ds, err := spectral.Assemble(spectral.Metadata{}, []*spectral.SeriesBuilder{b}, spectral.Options{})
	require.NoError(t, err)

	return ds.SeriesAt(0)
}

func TestValueAtLinear(t *testing.T) {
	t.Parallel()

	uniform := assemble(t, builder("", 380, 0, 390, 10, 400, 30))
	irregular := assemble(t, builder("", 380, 0, 385, 10, 400, 40))

	tests := []struct {
		name   string
		series *spectral.Series
		at     float64
		want   float64
	}{
		{"uniform exact", uniform, 390, 10},
		{"uniform mid", uniform, 395, 20},
		{"uniform first", uniform, 380, 0},
		{"uniform last", uniform, 400, 30},
		{"irregular first interval", irregular, 382.5, 5},
		{"irregular second interval", irregular, 395, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.series.ValueAt(tt.at, spectral.Linear)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestValueAtOutOfRange(t *testing.T) {
	t.Parallel()

	s := assemble(t, builder("", 380, 0, 390, 10))

	_, err := s.ValueAt(379.9, spectral.Linear)
	require.ErrorIs(t, err, spectral.ErrOutOfRange)

	_, err = s.ValueAt(390.1, spectral.Cubic)
	require.ErrorIs(t, err, spectral.ErrOutOfRange)
}

func TestValueAtCubic(t *testing.T) {
	t.Parallel()

	// A quadratic is reproduced exactly by Catmull-Rom in interior intervals.
	b := spectral.NewSeriesBuilder("")
	for w := 0.0; w <= 10; w++ {
		b.Append(w, w*w)
	}

	s := assemble(t, b)

	got, err := s.ValueAt(4.5, spectral.Cubic)
	require.NoError(t, err)
	assert.InDelta(t, 20.25, got, 1e-9)

	// Knots are always hit exactly.
	got, err = s.ValueAt(7, spectral.Cubic)
	require.NoError(t, err)
	assert.InDelta(t, 49.0, got, 1e-12)
}

func TestValueAtCubicFallsBackOnIrregular(t *testing.T) {
	t.Parallel()

	s := assemble(t, builder("", 380, 0, 385, 10, 400, 40))

	linear, err := s.ValueAt(390, spectral.Linear)
	require.NoError(t, err)

	cubic, err := s.ValueAt(390, spectral.Cubic)
	require.NoError(t, err)

	assert.InDelta(t, linear, cubic, 0)
}

func TestResample(t *testing.T) {
	t.Parallel()

	s := assemble(t, builder("r", 380, 0, 400, 20))

	out, err := s.Resample(380, 400, 5, spectral.Linear)
	require.NoError(t, err)

	assert.Equal(t, "r", out.Name())
	assert.Equal(t, []float64{380, 385, 390, 395, 400}, out.Wavelengths())
	assert.Equal(t, []float64{0, 5, 10, 15, 20}, out.Values())
	assert.True(t, out.Uniform())
	assert.InDelta(t, 5.0, out.Step(), 0)
}

func TestResampleErrors(t *testing.T) {
	t.Parallel()

	s := assemble(t, builder("", 380, 0, 400, 20))

	_, err := s.Resample(380, 400, 0, spectral.Linear)
	require.ErrorIs(t, err, spectral.ErrInvalidStep)

	_, err = s.Resample(370, 400, 10, spectral.Linear)
	require.ErrorIs(t, err, spectral.ErrOutOfRange)

	_, err = s.Resample(400, 380, 10, spectral.Linear)
	require.ErrorIs(t, err, spectral.ErrOutOfRange)

	_, err = s.Resample(380, 410, 10, spectral.Linear)
	require.ErrorIs(t, err, spectral.ErrOutOfRange)
}

func TestResampleRejectsOversizedGrid(t *testing.T) {
	t.Parallel()

	s := assemble(t, builder("", 380, 0, 400, 20))

	for _, step := range []float64{1e-15, math.SmallestNonzeroFloat64, 20.0 / spectral.MaxResamplePoints / 2} {
		_, err := s.Resample(380, 400, step, spectral.Linear)
		require.ErrorIs(t, err, spectral.ErrInvalidStep, step)
	}
}

func TestIntegral(t *testing.T) {
	t.Parallel()

	s := assemble(t, builder("", 380, 1, 390, 1, 400, 3))

	assert.InDelta(t, 10.0+20.0, s.Integral(), 1e-12)
}

func TestInterpolationString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "linear", spectral.Linear.String())
	assert.Equal(t, "cubic", spectral.Cubic.String())
}

func TestParseInterpolation(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]spectral.Interpolation{
		"":       spectral.Linear,
		"linear": spectral.Linear,
		"Cubic":  spectral.Cubic,
	} {
		got, err := spectral.ParseInterpolation(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := spectral.ParseInterpolation("spline")
	require.ErrorIs(t, err, spectral.ErrUnknownInterpolation)
}
