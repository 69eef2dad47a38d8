package spectral

import "math"

// Sample is one (wavelength, value) pair.
type Sample struct {
	Wavelength float64 `json:"wavelength" yaml:"wavelength"`
	Value      float64 `json:"value"      yaml:"value"`
}

// SeriesBuilder accumulates samples in file order while a source is parsed.
// It is owned by a single parse and turned into a [Series] by [Build].
type SeriesBuilder struct {
	name    string
	samples []Sample
}

// NewSeriesBuilder creates an empty builder for the named series.
func NewSeriesBuilder(name string) *SeriesBuilder {
	return &SeriesBuilder{name: name}
}

// Name returns the series name. The unnamed series of a two-column file has name "".
func (b *SeriesBuilder) Name() string {
	return b.name
}

// Append adds a sample at the end of the series.
func (b *SeriesBuilder) Append(wavelength, value float64) {
	b.samples = append(b.samples, Sample{Wavelength: wavelength, Value: value})
}

// Len returns the number of samples appended so far.
func (b *SeriesBuilder) Len() int {
	return len(b.samples)
}

// Samples returns a copy of the samples appended so far.
func (b *SeriesBuilder) Samples() []Sample {
	return append([]Sample(nil), b.samples...)
}

// Spacing describes the wavelength step of a series. Step is the nominal
// step (span divided by intervals); Uniform is set when every individual step
// matches it within the validator tolerance.
type Spacing struct {
	Step    float64 `json:"step"    yaml:"step"`
	Uniform bool    `json:"uniform" yaml:"uniform"`
}

// Series is an immutable, validated sample series.
type Series struct {
	name     string
	samples  []Sample
	spacing  Spacing
	minValue float64
	maxValue float64
	mean     float64
	stddev   float64
}

func newSeries(name string, samples []Sample, spacing Spacing) *Series {
	s := &Series{
		name:    name,
		samples: samples,
		spacing: spacing,
	}

	if len(samples) == 0 {
		return s
	}

	s.minValue = math.Inf(1)
	s.maxValue = math.Inf(-1)

	// Welford keeps the variance stable for large, offset values.
	var mean, m2 float64

	for i, sm := range samples {
		s.minValue = min(s.minValue, sm.Value)
		s.maxValue = max(s.maxValue, sm.Value)

		delta := sm.Value - mean
		mean += delta / float64(i+1)
		m2 += delta * (sm.Value - mean)
	}

	s.mean = mean
	s.stddev = math.Sqrt(m2 / float64(len(samples)))

	return s
}

// Name returns the series name.
func (s *Series) Name() string { return s.name }

// Len returns the number of samples.
func (s *Series) Len() int { return len(s.samples) }

// At returns the i-th sample. It panics when i is out of range, like a slice index.
func (s *Series) At(i int) Sample { return s.samples[i] }

// Samples returns a copy of the samples in file order.
func (s *Series) Samples() []Sample {
	return append([]Sample(nil), s.samples...)
}

// Wavelengths returns a copy of the wavelength axis.
func (s *Series) Wavelengths() []float64 {
	out := make([]float64, len(s.samples))
	for i, sm := range s.samples {
		out[i] = sm.Wavelength
	}

	return out
}

// Values returns a copy of the sample values.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.samples))
	for i, sm := range s.samples {
		out[i] = sm.Value
	}

	return out
}

// Spacing returns the wavelength step information.
func (s *Series) Spacing() Spacing { return s.spacing }

// Step returns the nominal wavelength step.
func (s *Series) Step() float64 { return s.spacing.Step }

// Uniform reports whether the series is sampled on a uniform grid.
func (s *Series) Uniform() bool { return s.spacing.Uniform }

// MinValue returns the smallest sample value.
func (s *Series) MinValue() float64 { return s.minValue }

// MaxValue returns the largest sample value.
func (s *Series) MaxValue() float64 { return s.maxValue }

// Mean returns the arithmetic mean of the sample values.
func (s *Series) Mean() float64 { return s.mean }

// StdDev returns the population standard deviation of the sample values.
func (s *Series) StdDev() float64 { return s.stddev }

// First returns the first sample. The series must not be empty.
func (s *Series) First() Sample { return s.samples[0] }

// Last returns the last sample. The series must not be empty.
func (s *Series) Last() Sample { return s.samples[len(s.samples)-1] }
