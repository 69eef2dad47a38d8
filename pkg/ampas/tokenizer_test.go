package ampas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/specio/pkg/ampas"
)

func kinds(lines []ampas.RawLine) []ampas.LineKind {
	out := make([]ampas.LineKind, len(lines))
	for i, rl := range lines {
		out[i] = rl.Kind
	}

	return out
}

func TestTokenizeClassification(t *testing.T) {
	t.Parallel()

	text := "\uFEFF# AMPAS spectral data\r\n" +
		"units = nm\n" +
		"Sample Name: tile 7  # inline comment\n" +
		"\n" +
		"wavelength d65 a\n" +
		"380 49.98 9.80\n" +
		"-.5e2 1 2\n" +
		"420 abc 1\n" +
		"??? garbage\n" +
		"nm value\n"

	lines := ampas.Lines(text, ampas.TokenizerOptions{})

	assert.Equal(t, []ampas.LineKind{
		ampas.KindComment,
		ampas.KindHeader,
		ampas.KindHeader,
		ampas.KindBlank,
		ampas.KindColumnDef,
		ampas.KindData,
		ampas.KindData,
		ampas.KindData,
		ampas.KindUnknown,
		// Labels after the first data row no longer define columns.
		ampas.KindUnknown,
	}, kinds(lines))

	assert.Equal(t, 1, lines[0].Number)
	assert.Equal(t, "# AMPAS spectral data", lines[0].Raw)
	assert.Equal(t, "Sample Name: tile 7", lines[2].Text)
	assert.Equal(t, "Sample Name: tile 7  # inline comment", lines[2].Raw)
	assert.Equal(t, 8, lines[7].Number)
}

func TestTokenizeCustomCommentMarker(t *testing.T) {
	t.Parallel()

	lines := ampas.Lines("; note\n380 1 ; trailing\n# not a comment\n", ampas.TokenizerOptions{CommentMarker: ";"})

	assert.Equal(t, []ampas.LineKind{ampas.KindComment, ampas.KindData, ampas.KindUnknown}, kinds(lines))
	assert.Equal(t, "380 1", lines[1].Text)
}

func TestTokenizeIsRestartable(t *testing.T) {
	t.Parallel()

	seq := ampas.Tokenize("a = 1\n380 1\n390 2\n", ampas.TokenizerOptions{})

	var first, second []ampas.RawLine
	for rl := range seq {
		first = append(first, rl)
	}

	for rl := range seq {
		second = append(second, rl)
	}

	assert.Len(t, first, 3)
	assert.Equal(t, first, second)

	// Early exit does not disturb later iterations.
	for rl := range seq {
		assert.Equal(t, 1, rl.Number)

		break
	}
}

func TestTokenizeHeaderDelimiters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want ampas.LineKind
	}{
		{"key = value", ampas.KindHeader},
		{"key: value", ampas.KindHeader},
		{"date: 2024-01-01 12:00", ampas.KindHeader},
		{"= value", ampas.KindUnknown},
		{"1key = value", ampas.KindHeader},
		{"2nd_operator = bob", ampas.KindHeader},
		{"_private: x", ampas.KindHeader},
		{"380: 1", ampas.KindData},
		{"1e5 = 2", ampas.KindData},
		{"lonely", ampas.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()

			lines := ampas.Lines(tt.text, ampas.TokenizerOptions{})
			assert.Equal(t, tt.want, lines[0].Kind)
		})
	}
}

func TestTokenizeSeparatorsAreUnknown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want ampas.LineKind
	}{
		{"----------", ampas.KindUnknown},
		{"...", ampas.KindUnknown},
		{"+++ ---", ampas.KindUnknown},
		{"-.5 1", ampas.KindData},
		{"+380 1", ampas.KindData},
		{".5 1", ampas.KindData},
		{"4x0 1", ampas.KindData},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()

			lines := ampas.Lines(tt.text, ampas.TokenizerOptions{})
			assert.Equal(t, tt.want, lines[0].Kind)
		})
	}
}

func TestLineKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "column-def", ampas.KindColumnDef.String())
	assert.Equal(t, "LineKind(42)", ampas.LineKind(42).String())
}
