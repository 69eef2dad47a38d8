package ampas

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/specio/pkg/spectral"
)

// Header parse failures, carried as the cause of a [spectral.MalformedHeaderError].
var (
	ErrNotFinite     = errors.New("value is not a finite number")
	ErrBadRange      = errors.New("expected a range such as 380-780")
	ErrInvertedRange = errors.New("minimum wavelength exceeds maximum")
)

// Assignment is one key/value pair in declaration order. Line is zero for
// sources without line numbers.
type Assignment struct {
	Line  int
	Key   string
	Value string
}

type field int

const (
	fieldNone field = iota
	fieldUnits
	fieldMin
	fieldMax
	fieldRange
	fieldSample
)

var wellKnownKeys = map[string]field{
	"units":             fieldUnits,
	"unit":              fieldUnits,
	"wavelength_units":  fieldUnits,
	"wavelength_unit":   fieldUnits,
	"wavelength_min":    fieldMin,
	"min_wavelength":    fieldMin,
	"spectral_start_nm": fieldMin,
	"wavelength_max":    fieldMax,
	"max_wavelength":    fieldMax,
	"spectral_end_nm":   fieldMax,
	"wavelength_range":  fieldRange,
	"range":             fieldRange,
	"sample":            fieldSample,
	"sample_id":         fieldSample,
	"sample_name":       fieldSample,
}

// ParseHeader turns header lines into metadata. Later declarations of a key
// overwrite earlier ones. Unknown keys are kept as opaque strings and never
// fail; a well-known key whose final value does not parse yields a
// [spectral.MalformedHeaderError].
func ParseHeader(lines []RawLine) (spectral.Metadata, []error) {
	assignments := make([]Assignment, 0, len(lines))

	for _, rl := range lines {
		key, value, ok := splitHeader(rl.Text)
		if !ok {
			continue
		}

		assignments = append(assignments, Assignment{Line: rl.Number, Key: key, Value: value})
	}

	return BuildMetadata(assignments)
}

// BuildMetadata applies assignments in order and parses the well-known keys.
func BuildMetadata(assignments []Assignment) (spectral.Metadata, []error) {
	values := make(map[string]string, len(assignments))

	// Each bound is decided by whichever alias was declared last.
	var units, sample, lower, upper *Assignment

	for i := range assignments {
		a := &assignments[i]
		key := spectral.NormalizeKey(a.Key)
		values[key] = a.Value

		switch wellKnownKeys[key] {
		case fieldUnits:
			units = a
		case fieldSample:
			sample = a
		case fieldMin:
			lower = a
		case fieldMax:
			upper = a
		case fieldRange:
			lower, upper = a, a
		case fieldNone:
		}
	}

	var (
		header   spectral.Header
		problems []error
	)

	if units != nil {
		unit, err := spectral.ParseUnit(units.Value)
		if err != nil {
			problems = append(problems, headerError(units, err))
		} else {
			header.Units = unit
		}
	}

	if sample != nil {
		header.SampleID = sample.Value
	}

	bounds, boundErrs := parseBounds(lower, upper)
	header.Bounds = bounds
	problems = append(problems, boundErrs...)

	return spectral.NewMetadata(values, header), problems
}

func parseBounds(lower, upper *Assignment) (spectral.Bounds, []error) {
	var (
		bounds   spectral.Bounds
		problems []error
	)

	// A range assignment feeding both ends is parsed and reported once.
	if lower != nil && lower == upper {
		lo, hi, err := parseRange(lower.Value)
		if err != nil {
			return bounds, []error{headerError(lower, err)}
		}

		bounds = spectral.Bounds{Min: lo, Max: hi, HasMin: true, HasMax: true}

		return bounds, checkInverted(bounds, lower)
	}

	if lower != nil {
		lo, err := boundFrom(lower, true)
		if err != nil {
			problems = append(problems, err)
		} else {
			bounds.Min, bounds.HasMin = lo, true
		}
	}

	if upper != nil {
		hi, err := boundFrom(upper, false)
		if err != nil {
			problems = append(problems, err)
		} else {
			bounds.Max, bounds.HasMax = hi, true
		}
	}

	if len(problems) > 0 {
		return bounds, problems
	}

	later := upper
	if lower != nil && (upper == nil || lower.Line > upper.Line) {
		later = lower
	}

	return bounds, checkInverted(bounds, later)
}

// boundFrom reads one end from a single-bound key or from the matching side of a range.
func boundFrom(a *Assignment, lowerEnd bool) (float64, error) {
	if wellKnownKeys[spectral.NormalizeKey(a.Key)] == fieldRange {
		lo, hi, err := parseRange(a.Value)
		if err != nil {
			return 0, headerError(a, err)
		}

		if lowerEnd {
			return lo, nil
		}

		return hi, nil
	}

	v, err := parseFinite(a.Value)
	if err != nil {
		return 0, headerError(a, err)
	}

	return v, nil
}

func checkInverted(bounds spectral.Bounds, at *Assignment) []error {
	if bounds.HasMin && bounds.HasMax && bounds.Min > bounds.Max {
		return []error{headerError(at, fmt.Errorf("%w: %s", ErrInvertedRange, bounds))}
	}

	return nil
}

func headerError(a *Assignment, err error) error {
	return &spectral.MalformedHeaderError{Line: a.Line, Key: a.Key, Value: a.Value, Err: err}
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}

	if !isFinite(v) {
		return 0, ErrNotFinite
	}

	return v, nil
}

var rangeSeparators = []string{"..", " to ", ","}

// parseRange accepts "360-780", "360 - 780", "360..780", "360 to 780" and "360,780".
func parseRange(s string) (lo, hi float64, err error) {
	s = strings.TrimSpace(s)

	left, right, ok := cutRange(s)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadRange, s)
	}

	lo, err = parseFinite(left)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadRange, s)
	}

	hi, err = parseFinite(right)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadRange, s)
	}

	return lo, hi, nil
}

func cutRange(s string) (string, string, bool) {
	lower := strings.ToLower(s)
	if len(lower) != len(s) {
		lower = s
	}

	for _, sep := range rangeSeparators {
		if idx := strings.Index(lower, sep); idx >= 0 {
			return s[:idx], s[idx+len(sep):], true
		}
	}

	// A dash separates the ends unless it is a leading sign or an exponent sign.
	for i := 1; i < len(s); i++ {
		if s[i] != '-' {
			continue
		}

		prev := s[i-1]
		if prev == 'e' || prev == 'E' {
			continue
		}

		return s[:i], s[i+1:], true
	}

	return "", "", false
}
