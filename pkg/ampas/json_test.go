package ampas_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/specio/pkg/ampas"
	"github.com/Sumatoshi-tech/specio/pkg/spectral"
)

const cameraJSON = `{
  "header": {
    "manufacturer": "Example",
    "model": "Camera 1",
    "schema_version": "1.0.0",
    "aperture": 5.6,
    "calibrated": true
  },
  "spectral_data": {
    "units": "relative",
    "index": {"main": ["R", "G", "B"]},
    "data": {
      "main": {
        "380": [0.001, 0.002, 0.010],
        "385": [0.002, 0.003, 0.020],
        "390": [0.004, 0.005, 0.040]
      }
    }
  }
}`

func TestParseJSON(t *testing.T) {
	t.Parallel()

	ds, err := ampas.ParseJSON([]byte(cameraJSON), ampas.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, ampas.FormatJSON, ds.Format())
	assert.Equal(t, []string{"R", "G", "B"}, ds.Names())

	b, ok := ds.Series("B")
	require.True(t, ok)
	assert.Equal(t, []float64{380, 385, 390}, b.Wavelengths())
	assert.Equal(t, []float64{0.010, 0.020, 0.040}, b.Values())

	meta := ds.Metadata()
	assert.Equal(t, spectral.UnitNanometer, meta.Units())

	v, _ := meta.Get("spectral_units")
	assert.Equal(t, "relative", v)

	v, _ = meta.Get("aperture")
	assert.Equal(t, "5.6", v)

	v, _ = meta.Get("calibrated")
	assert.Equal(t, "true", v)

	assert.True(t, ds.Summary().Uniform)
	assert.InDelta(t, 5.0, ds.Summary().Step, 0)
}

func TestParseJSONKeepsDocumentOrder(t *testing.T) {
	t.Parallel()

	doc := `{"spectral_data": {"data": {"main": {"400": [1], "390": [2], "410": [3]}}}}`

	_, err := ampas.ParseJSON([]byte(doc), ampas.DefaultOptions())
	require.ErrorIs(t, err, spectral.ErrNonMonotonicWavelength)
}

func TestParseJSONWithoutIndex(t *testing.T) {
	t.Parallel()

	single, err := ampas.ParseJSON([]byte(`{"spectral_data": {"data": {"main": {"380": [1], "390": [2]}}}}`), ampas.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{""}, single.Names())

	multi, err := ampas.ParseJSON([]byte(`{"spectral_data": {"data": {"main": {"380": [1, 2]}}}}`), ampas.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"Set 1", "Set 2"}, multi.Names())
}

func TestParseJSONRowProblems(t *testing.T) {
	t.Parallel()

	doc := `{"spectral_data": {
	  "index": {"main": ["a", "b"]},
	  "data": {"main": {"380": [1, 2], "blue": [1, 2], "400": [1]}}
	}}`

	_, err := ampas.ParseJSON([]byte(doc), ampas.DefaultOptions())

	problems := spectral.Problems(err)
	require.Len(t, problems, 2)

	for _, p := range problems {
		require.ErrorIs(t, p, spectral.ErrMalformedDataRow)
	}

	assert.Contains(t, problems[0].Error(), "blue")
	assert.Contains(t, problems[1].Error(), "expected 2 values, got 1")
}

func TestParseJSONSchemaViolations(t *testing.T) {
	t.Parallel()

	doc := `{"spectral_data": {"data": {"main": {"380": ["high"]}}}}`

	_, err := ampas.ParseJSON([]byte(doc), ampas.DefaultOptions())
	require.ErrorIs(t, err, spectral.ErrMalformedHeader)

	_, err = ampas.ParseJSON([]byte(`{"header": {}}`), ampas.DefaultOptions())
	require.ErrorIs(t, err, spectral.ErrMalformedHeader)
	assert.Contains(t, err.Error(), "spectral_data")
}

func TestParseJSONSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := ampas.ReadJSON(strings.NewReader("{\n  \"header\": {,\n}"), ampas.Options{Source: "broken.json"})
	require.ErrorIs(t, err, ampas.ErrInvalidDocument)

	var docErr *ampas.DocumentError
	require.ErrorAs(t, err, &docErr)
	assert.Equal(t, 2, docErr.Line)
}

func TestParseJSONHeaderRangeApplies(t *testing.T) {
	t.Parallel()

	doc := `{"header": {"wavelength_range": "380-385"},
	  "spectral_data": {"data": {"main": {"380": [1], "390": [2]}}}}`

	_, err := ampas.ParseJSON([]byte(doc), ampas.DefaultOptions())
	require.ErrorIs(t, err, spectral.ErrRangeMismatch)
}

func TestSchemaReady(t *testing.T) {
	t.Parallel()

	require.NoError(t, ampas.SchemaReady())
}
