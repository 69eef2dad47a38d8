package spectral

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrUnknownInterpolation is returned by [ParseInterpolation].
var ErrUnknownInterpolation = errors.New("unknown interpolation")

// Interpolation selects how [Series.ValueAt] evaluates between samples.
type Interpolation int

const (
	// Linear interpolates between the two bracketing samples.
	Linear Interpolation = iota
	// Cubic uses 4-point cubic Hermite interpolation on uniform series and
	// falls back to Linear on irregular ones.
	Cubic
)

func (m Interpolation) String() string {
	switch m {
	case Linear:
		return "linear"
	case Cubic:
		return "cubic"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(m))
	}
}

// ParseInterpolation resolves "linear" or "cubic", case-insensitively. An
// empty name is Linear.
func ParseInterpolation(name string) (Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "linear":
		return Linear, nil
	case "cubic":
		return Cubic, nil
	default:
		return Linear, fmt.Errorf("%w: %q", ErrUnknownInterpolation, name)
	}
}

// resampleEpsilon absorbs float drift when counting grid points.
const resampleEpsilon = 1e-9

// MaxResamplePoints caps the grid size of [Series.Resample].
const MaxResamplePoints = 1 << 20

// ValueAt evaluates the series at wavelength w. Requests outside
// [First, Last] return [ErrOutOfRange]; the series is never extrapolated.
func (s *Series) ValueAt(w float64, mode Interpolation) (float64, error) {
	idx, frac, err := s.bracket(w)
	if err != nil {
		return 0, err
	}

	if len(s.samples) == 1 {
		return s.samples[0].Value, nil
	}

	x0 := s.samples[idx].Value
	x1 := s.samples[idx+1].Value

	if mode != Cubic || !s.spacing.Uniform {
		return x0 + frac*(x1-x0), nil
	}

	xm1 := x0
	if idx > 0 {
		xm1 = s.samples[idx-1].Value
	}

	x2 := x1
	if idx+2 < len(s.samples) {
		x2 = s.samples[idx+2].Value
	}

	return hermite4(frac, xm1, x0, x1, x2), nil
}

// bracket locates the interval [idx, idx+1] containing w and the fractional
// position inside it. Uniform series are located arithmetically.
func (s *Series) bracket(w float64) (int, float64, error) {
	n := len(s.samples)
	if n == 0 || math.IsNaN(w) || w < s.samples[0].Wavelength || w > s.samples[n-1].Wavelength {
		return 0, 0, fmt.Errorf("%w: %s", ErrOutOfRange, formatFloat(w))
	}

	if n == 1 {
		return 0, 0, nil
	}

	var idx int

	if s.spacing.Uniform && s.spacing.Step > 0 {
		idx = int((w - s.samples[0].Wavelength) / s.spacing.Step)
		idx = max(0, min(idx, n-2))

		// The arithmetic guess can be one off on grids that are only uniform within tolerance.
		for idx > 0 && w < s.samples[idx].Wavelength {
			idx--
		}

		for idx < n-2 && w > s.samples[idx+1].Wavelength {
			idx++
		}
	} else {
		pos := sort.Search(n, func(i int) bool { return s.samples[i].Wavelength >= w })
		idx = max(0, min(pos-1, n-2))
	}

	lo, hi := s.samples[idx].Wavelength, s.samples[idx+1].Wavelength

	return idx, (w - lo) / (hi - lo), nil
}

// hermite4 is 4-point cubic Hermite interpolation between x0 and x1 at t in [0,1].
func hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)

	return ((c3*t+c2)*t+c1)*t + c0
}

// Resample evaluates the series on the uniform grid start, start+step, ... up
// to end and returns the result as a new series with the same name.
func (s *Series) Resample(start, end, step float64, mode Interpolation) (*Series, error) {
	if !isFinite(step) || step <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStep, formatFloat(step))
	}

	if !isFinite(start) || !isFinite(end) || end < start {
		return nil, fmt.Errorf("%w: [%s, %s]", ErrOutOfRange, formatFloat(start), formatFloat(end))
	}

	n := len(s.samples)
	if n == 0 || start < s.samples[0].Wavelength || end > s.samples[n-1].Wavelength {
		return nil, fmt.Errorf("%w: [%s, %s]", ErrOutOfRange, formatFloat(start), formatFloat(end))
	}

	points := math.Floor((end-start)/step+resampleEpsilon) + 1
	if !isFinite(points) || points > MaxResamplePoints {
		return nil, fmt.Errorf("%w: %s gives more than %d points", ErrInvalidStep, formatFloat(step), MaxResamplePoints)
	}

	count := int(points)
	samples := make([]Sample, count)

	for i := range count {
		w := start + float64(i)*step

		v, err := s.ValueAt(w, mode)
		if err != nil {
			return nil, err
		}

		samples[i] = Sample{Wavelength: w, Value: v}
	}

	spacing := Spacing{}
	if count > 1 {
		spacing = Spacing{Step: step, Uniform: true}
	}

	return newSeries(s.name, samples, spacing), nil
}

// Integral returns the trapezoidal integral of the series over its axis.
func (s *Series) Integral() float64 {
	var total float64

	for i := 1; i < len(s.samples); i++ {
		a, b := s.samples[i-1], s.samples[i]
		total += 0.5 * (a.Value + b.Value) * (b.Wavelength - a.Wavelength)
	}

	return total
}
