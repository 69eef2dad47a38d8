package spectral

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// DefaultUniformTolerance is the relative deviation from the nominal step
// still considered uniform spacing.
const DefaultUniformTolerance = 1e-6

// Validator checks parsed series before a dataset is built.
type Validator struct {
	// Tolerance is relative to the nominal step. Zero means DefaultUniformTolerance.
	Tolerance float64
}

// Validate checks every series against the axis invariants and the declared
// header range, and computes the spacing of each series. All problems are
// returned together as a joined error; spacing is only meaningful when the
// error is nil.
func (v Validator) Validate(header Header, builders []*SeriesBuilder) ([]Spacing, error) {
	if len(builders) == 0 {
		return nil, ErrNoSamples
	}

	tolerance := v.tolerance()
	spacing := make([]Spacing, len(builders))

	var problems []error

	names := make(map[string]struct{}, len(builders))

	// Columns of one table share their wavelength axis; its problems are
	// reported once, against the first series.
	var axes [][]Sample

	for i, b := range builders {
		if _, dup := names[b.name]; dup {
			problems = append(problems, fmt.Errorf("%w: %s", ErrDuplicateSeries, seriesLabel(b.name)))

			continue
		}

		names[b.name] = struct{}{}

		seriesProblems := validateSeries(header, b)
		if len(seriesProblems) > 0 {
			if slices.ContainsFunc(axes, func(axis []Sample) bool { return sameAxis(axis, b.samples) }) {
				seriesProblems = slices.DeleteFunc(seriesProblems, isAxisProblem)
			} else {
				axes = append(axes, b.samples)
			}

			problems = append(problems, seriesProblems...)

			continue
		}

		spacing[i] = spacingOf(b.samples, tolerance)
	}

	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}

	return spacing, nil
}

func sameAxis(a, b []Sample) bool {
	return slices.EqualFunc(a, b, func(x, y Sample) bool { return x.Wavelength == y.Wavelength })
}

func isAxisProblem(err error) bool {
	var (
		order *NonMonotonicWavelengthError
		dup   *DuplicateWavelengthError
		rng   *RangeMismatchError
	)

	return errors.As(err, &order) || errors.As(err, &dup) || errors.As(err, &rng)
}

func (v Validator) tolerance() float64 {
	if v.Tolerance <= 0 || math.IsNaN(v.Tolerance) {
		return DefaultUniformTolerance
	}

	return v.Tolerance
}

func validateSeries(header Header, b *SeriesBuilder) []error {
	if len(b.samples) == 0 {
		return []error{fmt.Errorf("series %s: %w", seriesLabel(b.name), ErrNoSamples)}
	}

	var problems []error

	for i, sm := range b.samples {
		if !isFinite(sm.Wavelength) || !isFinite(sm.Value) {
			problems = append(problems, &MalformedDataRowError{
				Raw:    formatFloat(sm.Wavelength) + " " + formatFloat(sm.Value),
				Reason: fmt.Sprintf("series %s index %d: non-finite number", seriesLabel(b.name), i),
			})
		}
	}

	// Ordering checks compare with NaN silently; report the finiteness problem alone.
	if len(problems) > 0 {
		return problems
	}

	problems = append(problems, checkOrder(b)...)

	if header.Bounds.Declared() {
		for _, sm := range b.samples {
			if !header.Bounds.Contains(sm.Wavelength) {
				problems = append(problems, &RangeMismatchError{
					Series:     b.name,
					Wavelength: sm.Wavelength,
					Bounds:     header.Bounds,
				})

				break
			}
		}
	}

	return problems
}

// checkOrder reports the first decreasing pair and every repeated wavelength.
// Samples are never reordered: a reshuffled file must fail, not be repaired.
func checkOrder(b *SeriesBuilder) []error {
	var problems []error

	seen := make(map[float64]struct{}, len(b.samples))
	reported := make(map[float64]struct{})
	monotonic := true

	for i, sm := range b.samples {
		if i > 0 && monotonic && sm.Wavelength < b.samples[i-1].Wavelength {
			monotonic = false

			problems = append(problems, &NonMonotonicWavelengthError{
				Series:     b.name,
				Index:      i,
				Wavelength: sm.Wavelength,
				Previous:   b.samples[i-1].Wavelength,
			})
		}

		if _, dup := seen[sm.Wavelength]; dup {
			if _, done := reported[sm.Wavelength]; !done {
				reported[sm.Wavelength] = struct{}{}

				problems = append(problems, &DuplicateWavelengthError{
					Series:     b.name,
					Index:      i,
					Wavelength: sm.Wavelength,
				})
			}

			continue
		}

		seen[sm.Wavelength] = struct{}{}
	}

	return problems
}

func spacingOf(samples []Sample, tolerance float64) Spacing {
	n := len(samples)
	if n < 2 {
		return Spacing{}
	}

	nominal := (samples[n-1].Wavelength - samples[0].Wavelength) / float64(n-1)
	limit := tolerance * nominal

	for i := 1; i < n; i++ {
		step := samples[i].Wavelength - samples[i-1].Wavelength
		if math.Abs(step-nominal) > limit {
			return Spacing{Step: nominal}
		}
	}

	return Spacing{Step: nominal, Uniform: true}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
