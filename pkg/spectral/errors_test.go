package spectral_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/specio/pkg/spectral"
)

func TestNewReadErrorNil(t *testing.T) {
	t.Parallel()

	require.NoError(t, spectral.NewReadError("x.spd"))
	require.NoError(t, spectral.NewReadError("x.spd", nil, nil))
}

func TestNewReadErrorFlattensJoins(t *testing.T) {
	t.Parallel()

	rowErr := &spectral.MalformedDataRowError{Line: 4, Raw: "420 abc", Reason: "bad number"}
	dupErr := &spectral.DuplicateWavelengthError{Wavelength: 390, Index: 2}

	err := spectral.NewReadError("x.spd", errors.Join(rowErr, nil), dupErr)

	var readErr *spectral.ReadError
	require.ErrorAs(t, err, &readErr)

	assert.Equal(t, "x.spd", readErr.Source)
	assert.Len(t, readErr.Errs, 2)
	require.ErrorIs(t, err, spectral.ErrMalformedDataRow)
	require.ErrorIs(t, err, spectral.ErrDuplicateWavelength)

	msg := err.Error()
	assert.Contains(t, msg, "read x.spd: 2 problems")
	assert.Contains(t, msg, `line 4: malformed data row: bad number: "420 abc"`)
}

func TestReadErrorSingleProblem(t *testing.T) {
	t.Parallel()

	err := spectral.NewReadError("", &spectral.UnknownLineError{Line: 2, Raw: "???"})

	assert.Equal(t, `read spectral data: line 2: unrecognized line: "???"`, err.Error())
}

func TestProblemsKeepsLeafErrorsIntact(t *testing.T) {
	t.Parallel()

	ioErr := &spectral.IOError{Path: "a.spd", Err: fs.ErrNotExist}
	headerErr := &spectral.MalformedHeaderError{Line: 1, Key: "wavelength_min", Value: "abc", Err: errors.New("not a number")}

	problems := spectral.Problems(errors.Join(ioErr, headerErr))
	require.Len(t, problems, 2)
	assert.Same(t, ioErr, problems[0])
	assert.Same(t, headerErr, problems[1])

	assert.Nil(t, spectral.Problems(nil))
}

func TestIOErrorUnwrap(t *testing.T) {
	t.Parallel()

	err := &spectral.IOError{Path: "a.spd", Err: fs.ErrNotExist}

	require.ErrorIs(t, err, spectral.ErrIO)
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "a.spd")
}

func TestMalformedHeaderErrorMessage(t *testing.T) {
	t.Parallel()

	err := &spectral.MalformedHeaderError{Line: 3, Key: "wavelength_min", Value: "abc"}

	assert.Equal(t, `line 3: malformed header: wavelength_min = "abc"`, err.Error())
	require.ErrorIs(t, err, spectral.ErrMalformedHeader)
}

func TestSeriesErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "non monotonic unnamed",
			err:  &spectral.NonMonotonicWavelengthError{Index: 2, Wavelength: 380, Previous: 390},
			want: "series (unnamed): wavelengths not strictly increasing: index 2 has 380 after 390",
		},
		{
			name: "duplicate named",
			err:  &spectral.DuplicateWavelengthError{Series: "d65", Index: 3, Wavelength: 390.5},
			want: `series "d65": duplicate wavelength 390.5 at index 3`,
		},
		{
			name: "range",
			err: &spectral.RangeMismatchError{
				Wavelength: 410,
				Bounds:     spectral.Bounds{Min: 360, Max: 400, HasMin: true, HasMax: true},
			},
			want: "series (unnamed): wavelength outside declared range: 410 not in [360, 400]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindAndLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		kind string
		line int
	}{
		{
			name: "header",
			err:  &spectral.MalformedHeaderError{Line: 3, Key: "units", Value: "parsec"},
			kind: "malformed-header",
			line: 3,
		},
		{
			name: "row",
			err:  &spectral.MalformedDataRowError{Line: 7, Raw: "x", Reason: "bad"},
			kind: "malformed-row",
			line: 7,
		},
		{
			name: "unknown",
			err:  &spectral.UnknownLineError{Line: 2, Raw: "***"},
			kind: "unknown-line",
			line: 2,
		},
		{
			name: "too large",
			err:  &spectral.IOError{Path: "a.spd", Err: spectral.ErrFileTooLarge},
			kind: "file-too-large",
		},
		{
			name: "io",
			err:  &spectral.IOError{Path: "a.spd", Err: fs.ErrPermission},
			kind: "io",
		},
		{
			name: "non-monotonic",
			err:  &spectral.NonMonotonicWavelengthError{Index: 2, Wavelength: 380, Previous: 390},
			kind: "non-monotonic",
		},
		{name: "empty", err: spectral.ErrNoSamples, kind: "no-samples"},
		{name: "foreign", err: errors.New("boom"), kind: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.kind, spectral.Kind(tt.err))
			assert.Equal(t, tt.line, spectral.Line(tt.err))
		})
	}
}
