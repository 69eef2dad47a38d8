package spectral

import (
	"iter"
	"math"
	"slices"
)

// Summary holds statistics computed over every series of a dataset.
type Summary struct {
	MinWavelength float64 `json:"min_wavelength" yaml:"min_wavelength"`
	MaxWavelength float64 `json:"max_wavelength" yaml:"max_wavelength"`
	MinValue      float64 `json:"min_value"      yaml:"min_value"`
	MaxValue      float64 `json:"max_value"      yaml:"max_value"`
	// Step is the common nominal step when Uniform is set, zero otherwise.
	Step    float64 `json:"step"    yaml:"step"`
	Uniform bool    `json:"uniform" yaml:"uniform"`
	Samples int     `json:"samples" yaml:"samples"`
	Series  int     `json:"series"  yaml:"series"`
}

// Dataset is the validated, immutable result of reading one spectral source.
// Every accessor returns copies; re-reading a file produces a new Dataset.
type Dataset struct {
	format  string
	meta    Metadata
	names   []string
	series  map[string]*Series
	summary Summary
}

// Format returns the source format tag the dataset was read from.
func (d *Dataset) Format() string { return d.format }

// Metadata returns the dataset metadata.
func (d *Dataset) Metadata() Metadata { return d.meta }

// Summary returns the dataset-wide statistics.
func (d *Dataset) Summary() Summary { return d.summary }

// Len returns the number of series.
func (d *Dataset) Len() int { return len(d.names) }

// Names returns the series names in source column order.
func (d *Dataset) Names() []string {
	return slices.Clone(d.names)
}

// Series returns the named series.
func (d *Dataset) Series(name string) (*Series, bool) {
	s, ok := d.series[name]

	return s, ok
}

// SeriesAt returns the i-th series in source column order.
func (d *Dataset) SeriesAt(i int) *Series {
	return d.series[d.names[i]]
}

// All iterates the series in source column order.
func (d *Dataset) All() iter.Seq2[string, *Series] {
	return func(yield func(string, *Series) bool) {
		for _, name := range d.names {
			if !yield(name, d.series[name]) {
				return
			}
		}
	}
}

// Options controls [Assemble] and [Build].
type Options struct {
	// Format tags the dataset with the reader that produced it.
	Format string
	// Tolerance is the relative uniform-step tolerance; zero means DefaultUniformTolerance.
	Tolerance float64
}

// Assemble validates the builders and, when every check passes, builds the
// dataset. On failure it returns the joined validation problems and no dataset.
func Assemble(meta Metadata, builders []*SeriesBuilder, opts Options) (*Dataset, error) {
	spacing, err := Validator{Tolerance: opts.Tolerance}.Validate(meta.Header(), builders)
	if err != nil {
		return nil, err
	}

	return Build(meta, builders, spacing, opts), nil
}

// Build assembles validated builders into a dataset, computing the summary in
// a single pass. spacing must come from [Validator.Validate] for the same
// builders. The builders' samples are copied.
func Build(meta Metadata, builders []*SeriesBuilder, spacing []Spacing, opts Options) *Dataset {
	ds := &Dataset{
		format: opts.Format,
		meta:   meta,
		names:  make([]string, 0, len(builders)),
		series: make(map[string]*Series, len(builders)),
	}

	sum := Summary{
		MinWavelength: math.Inf(1),
		MaxWavelength: math.Inf(-1),
		MinValue:      math.Inf(1),
		MaxValue:      math.Inf(-1),
		Uniform:       len(builders) > 0,
	}

	tolerance := Validator{Tolerance: opts.Tolerance}.tolerance()

	for i, b := range builders {
		sp := spacing[i]
		s := newSeries(b.name, b.Samples(), sp)

		ds.names = append(ds.names, b.name)
		ds.series[b.name] = s

		sum.Samples += s.Len()

		if s.Len() > 0 {
			sum.MinWavelength = min(sum.MinWavelength, s.First().Wavelength)
			sum.MaxWavelength = max(sum.MaxWavelength, s.Last().Wavelength)
			sum.MinValue = min(sum.MinValue, s.minValue)
			sum.MaxValue = max(sum.MaxValue, s.maxValue)
		}

		switch {
		case !sp.Uniform:
			sum.Uniform = false
		case i == 0:
			sum.Step = sp.Step
		case math.Abs(sp.Step-sum.Step) > tolerance*sum.Step:
			sum.Uniform = false
		}
	}

	sum.Series = len(ds.names)

	if !sum.Uniform {
		sum.Step = 0
	}

	if sum.Samples == 0 {
		sum.MinWavelength, sum.MaxWavelength, sum.MinValue, sum.MaxValue = 0, 0, 0, 0
	}

	ds.summary = sum

	return ds
}
