package render_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/specio/pkg/render"
)

func TestDiffIdenticalDatasets(t *testing.T) {
	t.Parallel()

	a, err := render.Canonical(snapshot(t, d65, true))
	require.NoError(t, err)

	b, err := render.Canonical(snapshot(t, d65, true))
	require.NoError(t, err)

	diffs := render.Diff(a, b)
	assert.False(t, render.Changed(diffs))

	var buf bytes.Buffer

	require.NoError(t, render.WriteDiff(&buf, diffs, 3, true))
	assert.True(t, strings.HasPrefix(buf.String(), "@@ "), buf.String())
}

func TestDiffReportsChangedValue(t *testing.T) {
	t.Parallel()

	a, err := render.Canonical(snapshot(t, d65, true))
	require.NoError(t, err)

	b, err := render.Canonical(snapshot(t, strings.Replace(d65, "82.7549", "82.75", 1), true))
	require.NoError(t, err)

	diffs := render.Diff(a, b)
	require.True(t, render.Changed(diffs))

	var buf bytes.Buffer

	require.NoError(t, render.WriteDiff(&buf, diffs, 1, true))

	out := buf.String()
	assert.True(t, hasLine(out, "-", "value: 82.7549"), out)
	assert.True(t, hasLine(out, "+", "value: 82.75"), out)
	assert.Contains(t, out, "unchanged lines")

	buf.Reset()
	require.NoError(t, render.WriteDiff(&buf, diffs, -1, true))
	assert.NotContains(t, buf.String(), "unchanged lines")
}

func hasLine(out, prefix, suffix string) bool {
	for line := range strings.Lines(out) {
		line = strings.TrimSuffix(line, "\n")
		if strings.HasPrefix(line, prefix) && strings.HasSuffix(line, suffix) {
			return true
		}
	}

	return false
}
