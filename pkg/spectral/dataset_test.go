package spectral_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/specio/pkg/spectral"
)

func TestAssembleSingleSeries(t *testing.T) {
	t.Parallel()

	ds, err := spectral.Assemble(spectral.Metadata{}, []*spectral.SeriesBuilder{
		builder("", 380, 0.1, 390, 0.2, 400, 0.15),
	}, spectral.Options{Format: "test"})
	require.NoError(t, err)

	assert.Equal(t, "test", ds.Format())
	assert.Equal(t, []string{""}, ds.Names())

	s, ok := ds.Series("")
	require.True(t, ok)

	assert.Equal(t, []spectral.Sample{
		{Wavelength: 380, Value: 0.1},
		{Wavelength: 390, Value: 0.2},
		{Wavelength: 400, Value: 0.15},
	}, s.Samples())
	assert.InDelta(t, 0.1, s.MinValue(), 0)
	assert.InDelta(t, 0.2, s.MaxValue(), 0)
	assert.InDelta(t, 0.15, s.Mean(), 1e-12)

	sum := ds.Summary()
	assert.Equal(t, spectral.Summary{
		MinWavelength: 380,
		MaxWavelength: 400,
		MinValue:      0.1,
		MaxValue:      0.2,
		Step:          10,
		Uniform:       true,
		Samples:       3,
		Series:        1,
	}, sum)
}

func TestAssembleFailureReturnsNoDataset(t *testing.T) {
	t.Parallel()

	ds, err := spectral.Assemble(spectral.Metadata{}, []*spectral.SeriesBuilder{
		builder("", 390, 1, 380, 1),
	}, spectral.Options{})

	require.Error(t, err)
	assert.Nil(t, ds)
}

func TestAssembleMultiSeriesSummary(t *testing.T) {
	t.Parallel()

	ds, err := spectral.Assemble(spectral.Metadata{}, []*spectral.SeriesBuilder{
		builder("d65", 380, 50, 390, 55, 400, 82),
		builder("a", 370, 9, 380, 10, 390, 12),
	}, spectral.Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"d65", "a"}, ds.Names())
	assert.Equal(t, "a", ds.SeriesAt(1).Name())

	sum := ds.Summary()
	assert.InDelta(t, 370.0, sum.MinWavelength, 0)
	assert.InDelta(t, 400.0, sum.MaxWavelength, 0)
	assert.InDelta(t, 9.0, sum.MinValue, 0)
	assert.InDelta(t, 82.0, sum.MaxValue, 0)
	assert.True(t, sum.Uniform)
	assert.InDelta(t, 10.0, sum.Step, 1e-12)
	assert.Equal(t, 6, sum.Samples)
	assert.Equal(t, 2, sum.Series)

	var names []string
	for name := range ds.All() {
		names = append(names, name)
	}

	assert.Equal(t, []string{"d65", "a"}, names)
}

func TestAssembleMixedStepsNotUniform(t *testing.T) {
	t.Parallel()

	ds, err := spectral.Assemble(spectral.Metadata{}, []*spectral.SeriesBuilder{
		builder("five", 380, 1, 385, 1, 390, 1),
		builder("ten", 380, 1, 390, 1, 400, 1),
	}, spectral.Options{})
	require.NoError(t, err)

	assert.False(t, ds.Summary().Uniform)
	assert.Zero(t, ds.Summary().Step)
	assert.True(t, ds.SeriesAt(0).Uniform())
	assert.True(t, ds.SeriesAt(1).Uniform())
}

func TestDatasetAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	b := builder("", 380, 1, 390, 2)

	ds, err := spectral.Assemble(spectral.Metadata{}, []*spectral.SeriesBuilder{b}, spectral.Options{})
	require.NoError(t, err)

	// Mutating the builder after assembly must not leak into the dataset.
	b.Append(400, 3)

	names := ds.Names()
	names[0] = "mutated"

	s := ds.SeriesAt(0)
	samples := s.Samples()
	samples[0].Value = 99

	assert.Equal(t, 2, s.Len())
	assert.InDelta(t, 1.0, s.At(0).Value, 0)
	assert.Equal(t, []string{""}, ds.Names())
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	meta := spectral.NewMetadata(map[string]string{"Sample Name": "tile"}, spectral.Header{
		Units:    spectral.UnitNanometer,
		SampleID: "tile",
		Bounds:   spectral.Bounds{Min: 380, HasMin: true},
	})

	ds, err := spectral.Assemble(meta, []*spectral.SeriesBuilder{
		builder("r", 380, 0.5, 390, 0.7),
	}, spectral.Options{Format: "ampas"})
	require.NoError(t, err)

	snap := ds.Snapshot(false)
	assert.Equal(t, "ampas", snap.Format)
	assert.Equal(t, "nm", snap.Units)
	assert.Equal(t, "tile", snap.SampleID)
	assert.Equal(t, map[string]string{"sample_name": "tile"}, snap.Metadata)
	require.NotNil(t, snap.Range)
	require.NotNil(t, snap.Range.Min)
	assert.InDelta(t, 380.0, *snap.Range.Min, 0)
	assert.Nil(t, snap.Range.Max)
	require.Len(t, snap.Series, 1)
	assert.Equal(t, 2, snap.Series[0].Count)
	assert.Nil(t, snap.Series[0].Samples)

	full := ds.Snapshot(true)
	assert.Len(t, full.Series[0].Samples, 2)
}
