package ampas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/specio/pkg/ampas"
	"github.com/Sumatoshi-tech/specio/pkg/spectral"
)

func headerLines(text string) []ampas.RawLine {
	var out []ampas.RawLine

	for rl := range ampas.Tokenize(text, ampas.TokenizerOptions{}) {
		if rl.Kind == ampas.KindHeader {
			out = append(out, rl)
		}
	}

	return out
}

func TestParseHeaderLastWriteWins(t *testing.T) {
	t.Parallel()

	meta, errs := ampas.ParseHeader(headerLines("units = nm\ninstrument = CS-2000\nunits = angstrom\n"))
	require.Empty(t, errs)

	v, ok := meta.Get("units")
	require.True(t, ok)
	assert.Equal(t, "angstrom", v)
	assert.Equal(t, spectral.UnitAngstrom, meta.Units())

	v, _ = meta.Get("instrument")
	assert.Equal(t, "CS-2000", v)
}

func TestParseHeaderOnlyFinalValueIsTyped(t *testing.T) {
	t.Parallel()

	meta, errs := ampas.ParseHeader(headerLines("wavelength_min = oops\nwavelength_min = 380\n"))
	require.Empty(t, errs)

	assert.True(t, meta.Bounds().HasMin)
	assert.InDelta(t, 380.0, meta.Bounds().Min, 0)
}

func TestParseHeaderRanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value  string
		lo, hi float64
	}{
		{"360-400", 360, 400},
		{"360 - 400", 360, 400},
		{"360..400", 360, 400},
		{"360 to 400", 360, 400},
		{"360 TO 400", 360, 400},
		{"360,400", 360, 400},
		{"3.6e2-4e2", 360, 400},
		{"1e-3-2e-3", 0.001, 0.002},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()

			meta, errs := ampas.ParseHeader(headerLines("wavelength_range = " + tt.value))
			require.Empty(t, errs)

			b := meta.Bounds()
			assert.True(t, b.HasMin)
			assert.True(t, b.HasMax)
			assert.InDelta(t, tt.lo, b.Min, 1e-12)
			assert.InDelta(t, tt.hi, b.Max, 1e-12)
		})
	}
}

func TestParseHeaderAliasesAcrossLines(t *testing.T) {
	t.Parallel()

	meta, errs := ampas.ParseHeader(headerLines("range = 360-400\nSPECTRAL_END_NM = 780\nsample-id = tile\n"))
	require.Empty(t, errs)

	b := meta.Bounds()
	assert.InDelta(t, 360.0, b.Min, 0)
	assert.InDelta(t, 780.0, b.Max, 0)
	assert.Equal(t, "tile", meta.SampleID())
}

func TestParseHeaderMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		key  string
		line int
	}{
		{"non numeric bound", "a = b\nwavelength_min = abc", "wavelength_min", 2},
		{"infinite bound", "wavelength_max = inf", "wavelength_max", 1},
		{"bad range", "wavelength_range = visible", "wavelength_range", 1},
		{"unknown unit", "units = furlongs", "units", 1},
		{"inverted", "wavelength_min = 700\nwavelength_max = 400", "wavelength_max", 2},
		{"inverted range", "range = 700-400", "range", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, errs := ampas.ParseHeader(headerLines(tt.text))
			require.Len(t, errs, 1)
			require.ErrorIs(t, errs[0], spectral.ErrMalformedHeader)

			var headerErr *spectral.MalformedHeaderError
			require.ErrorAs(t, errs[0], &headerErr)
			assert.Equal(t, tt.key, headerErr.Key)
			assert.Equal(t, tt.line, headerErr.Line)
		})
	}
}

func TestParseHeaderUnknownKeysNeverFail(t *testing.T) {
	t.Parallel()

	meta, errs := ampas.ParseHeader(headerLines("Date: whenever\nLamp Hours = lots\n"))
	require.Empty(t, errs)

	assert.Equal(t, []string{"date", "lamp_hours"}, meta.Keys())
	assert.Equal(t, spectral.UnitUnknown, meta.Units())
}
