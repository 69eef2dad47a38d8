package spectral

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors. Every typed error below unwraps to one of these so callers
// can branch with [errors.Is] without caring about the location details.
var (
	// ErrIO indicates the spectral source could not be opened or read.
	ErrIO = errors.New("cannot read spectral source")
	// ErrFileTooLarge indicates the source exceeds the configured size limit.
	ErrFileTooLarge = errors.New("spectral source exceeds size limit")
	// ErrMalformedHeader indicates a well-known header value could not be parsed.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrMalformedDataRow indicates a sample row with a wrong token count or a bad number.
	ErrMalformedDataRow = errors.New("malformed data row")
	// ErrUnknownLine indicates an unclassifiable line while strict scanning is enabled.
	ErrUnknownLine = errors.New("unrecognized line")
	// ErrNonMonotonicWavelength indicates a wavelength smaller than its predecessor.
	ErrNonMonotonicWavelength = errors.New("wavelengths not strictly increasing")
	// ErrDuplicateWavelength indicates a wavelength that occurs more than once in a series.
	ErrDuplicateWavelength = errors.New("duplicate wavelength")
	// ErrRangeMismatch indicates a sample outside the range declared in the header.
	ErrRangeMismatch = errors.New("wavelength outside declared range")
	// ErrNoSamples indicates a source without any sample rows.
	ErrNoSamples = errors.New("no samples")
	// ErrDuplicateSeries indicates two series sharing one name.
	ErrDuplicateSeries = errors.New("duplicate series name")
	// ErrOutOfRange indicates an interpolation request outside the series axis.
	ErrOutOfRange = errors.New("wavelength outside series axis")
	// ErrInvalidStep indicates a non-positive or non-finite resampling step.
	ErrInvalidStep = errors.New("invalid resampling step")
)

// IOError reports a source that could not be read. It is surfaced immediately
// and never collected with parse problems.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %v", ErrIO, e.Err)
	}

	return fmt.Sprintf("%v %s: %v", ErrIO, e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// MalformedHeaderError reports a well-known header key whose value does not
// parse as its expected type.
type MalformedHeaderError struct {
	Line  int
	Key   string
	Value string
	Err   error
}

func (e *MalformedHeaderError) Error() string {
	var sb strings.Builder

	sb.WriteString(linePrefix(e.Line))
	fmt.Fprintf(&sb, "%v: %s = %q", ErrMalformedHeader, e.Key, e.Value)

	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}

	return sb.String()
}

// Unwrap exposes the sentinel and the parse cause.
func (e *MalformedHeaderError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedHeader}
	}

	return []error{ErrMalformedHeader, e.Err}
}

// MalformedDataRowError reports a sample row that cannot be turned into
// finite numbers. Raw is the row text as it appeared in the source.
type MalformedDataRowError struct {
	Line   int
	Raw    string
	Reason string
}

func (e *MalformedDataRowError) Error() string {
	return fmt.Sprintf("%s%v: %s: %q", linePrefix(e.Line), ErrMalformedDataRow, e.Reason, e.Raw)
}

func (e *MalformedDataRowError) Unwrap() error { return ErrMalformedDataRow }

// UnknownLineError reports a line the tokenizer could not classify. It is only
// produced when strict scanning is requested.
type UnknownLineError struct {
	Line int
	Raw  string
}

func (e *UnknownLineError) Error() string {
	return fmt.Sprintf("%s%v: %q", linePrefix(e.Line), ErrUnknownLine, e.Raw)
}

func (e *UnknownLineError) Unwrap() error { return ErrUnknownLine }

// NonMonotonicWavelengthError reports the first index at which a series
// wavelength is smaller than the one before it.
type NonMonotonicWavelengthError struct {
	Series     string
	Index      int
	Wavelength float64
	Previous   float64
}

func (e *NonMonotonicWavelengthError) Error() string {
	return fmt.Sprintf("series %s: %v: index %d has %s after %s",
		seriesLabel(e.Series), ErrNonMonotonicWavelength, e.Index,
		formatFloat(e.Wavelength), formatFloat(e.Previous))
}

func (e *NonMonotonicWavelengthError) Unwrap() error { return ErrNonMonotonicWavelength }

// DuplicateWavelengthError reports the second occurrence of a wavelength.
type DuplicateWavelengthError struct {
	Series     string
	Index      int
	Wavelength float64
}

func (e *DuplicateWavelengthError) Error() string {
	return fmt.Sprintf("series %s: %v %s at index %d",
		seriesLabel(e.Series), ErrDuplicateWavelength, formatFloat(e.Wavelength), e.Index)
}

func (e *DuplicateWavelengthError) Unwrap() error { return ErrDuplicateWavelength }

// RangeMismatchError reports the first sample of a series lying outside the
// wavelength bounds declared in the header.
type RangeMismatchError struct {
	Series     string
	Wavelength float64
	Bounds     Bounds
}

func (e *RangeMismatchError) Error() string {
	return fmt.Sprintf("series %s: %v: %s not in %s",
		seriesLabel(e.Series), ErrRangeMismatch, formatFloat(e.Wavelength), e.Bounds)
}

func (e *RangeMismatchError) Unwrap() error { return ErrRangeMismatch }

// ReadError aggregates every problem found while reading one source. Each
// problem stays reachable through [errors.As] and [errors.Is].
type ReadError struct {
	Source string
	Errs   []error
}

func (e *ReadError) Error() string {
	source := e.Source
	if source == "" {
		source = "spectral data"
	}

	if len(e.Errs) == 1 {
		return fmt.Sprintf("read %s: %v", source, e.Errs[0])
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "read %s: %d problems", source, len(e.Errs))

	for _, err := range e.Errs {
		sb.WriteString("\n  ")
		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Unwrap returns the collected problems.
func (e *ReadError) Unwrap() []error { return e.Errs }

// NewReadError wraps problems into a [ReadError]. Nil entries are dropped and
// joined errors are flattened. Returns nil when nothing is left.
func NewReadError(source string, problems ...error) error {
	flat := flatten(problems)
	if len(flat) == 0 {
		return nil
	}

	return &ReadError{Source: source, Errs: flat}
}

// Problems lists the individual problems behind err. A [ReadError] or a joined
// error is expanded; any other error is returned as a single problem.
func Problems(err error) []error {
	if err == nil {
		return nil
	}

	var readErr *ReadError
	if errors.As(err, &readErr) {
		return append([]error(nil), readErr.Errs...)
	}

	return flatten([]error{err})
}

func flatten(errs []error) []error {
	var out []error

	for _, err := range errs {
		if err == nil {
			continue
		}

		if joined, ok := err.(interface{ Unwrap() []error }); ok && isJoin(err) {
			out = append(out, flatten(joined.Unwrap())...)

			continue
		}

		out = append(out, err)
	}

	return out
}

// isJoin reports whether err is an aggregate worth expanding. Leaf errors in
// this package also implement Unwrap() []error and must stay intact.
func isJoin(err error) bool {
	switch err.(type) {
	case *IOError, *MalformedHeaderError:
		return false
	default:
		return true
	}
}

func linePrefix(line int) string {
	if line <= 0 {
		return ""
	}

	return "line " + strconv.Itoa(line) + ": "
}

func seriesLabel(name string) string {
	if name == "" {
		return "(unnamed)"
	}

	return strconv.Quote(name)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Kind names the category of a single problem, for metrics and diagnostics.
// Unrecognized errors are "other".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		return "file-too-large"
	case errors.Is(err, ErrIO):
		return "io"
	case errors.Is(err, ErrMalformedHeader):
		return "malformed-header"
	case errors.Is(err, ErrMalformedDataRow):
		return "malformed-row"
	case errors.Is(err, ErrUnknownLine):
		return "unknown-line"
	case errors.Is(err, ErrNonMonotonicWavelength):
		return "non-monotonic"
	case errors.Is(err, ErrDuplicateWavelength):
		return "duplicate-wavelength"
	case errors.Is(err, ErrRangeMismatch):
		return "range-mismatch"
	case errors.Is(err, ErrDuplicateSeries):
		return "duplicate-series"
	case errors.Is(err, ErrNoSamples):
		return "no-samples"
	default:
		return "other"
	}
}

// Line returns the 1-based source line a problem points at, or 0 when it has
// none (validation problems, I/O failures).
func Line(err error) int {
	var (
		header  *MalformedHeaderError
		row     *MalformedDataRowError
		unknown *UnknownLineError
	)

	switch {
	case errors.As(err, &header):
		return header.Line
	case errors.As(err, &row):
		return row.Line
	case errors.As(err, &unknown):
		return unknown.Line
	default:
		return 0
	}
}
