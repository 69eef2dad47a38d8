package spectral

// Snapshot is a plain-data copy of a dataset, shaped for encoders.
type Snapshot struct {
	Format   string            `json:"format"              yaml:"format"`
	SampleID string            `json:"sample_id,omitempty" yaml:"sample_id,omitempty"`
	Units    string            `json:"units,omitempty"     yaml:"units,omitempty"`
	Range    *RangeSnapshot    `json:"range,omitempty"     yaml:"range,omitempty"`
	Metadata map[string]string `json:"metadata"            yaml:"metadata"`
	Summary  Summary           `json:"summary"             yaml:"summary"`
	Series   []SeriesSnapshot  `json:"series"              yaml:"series"`
}

// RangeSnapshot is the declared wavelength range; absent ends are nil.
type RangeSnapshot struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// SeriesSnapshot is a plain-data copy of one series.
type SeriesSnapshot struct {
	Name     string   `json:"name"              yaml:"name"`
	Count    int      `json:"count"             yaml:"count"`
	Step     float64  `json:"step"              yaml:"step"`
	Uniform  bool     `json:"uniform"           yaml:"uniform"`
	MinValue float64  `json:"min_value"         yaml:"min_value"`
	MaxValue float64  `json:"max_value"         yaml:"max_value"`
	Mean     float64  `json:"mean"              yaml:"mean"`
	StdDev   float64  `json:"stddev"            yaml:"stddev"`
	Samples  []Sample `json:"samples,omitempty" yaml:"samples,omitempty"`
}

// Snapshot copies the dataset. Sample tables are included only when withSamples is set.
func (d *Dataset) Snapshot(withSamples bool) Snapshot {
	header := d.meta.Header()

	snap := Snapshot{
		Format:   d.format,
		SampleID: header.SampleID,
		Units:    string(header.Units),
		Metadata: d.meta.Values(),
		Summary:  d.summary,
		Series:   make([]SeriesSnapshot, 0, len(d.names)),
	}

	if header.Bounds.Declared() {
		snap.Range = &RangeSnapshot{}

		if header.Bounds.HasMin {
			lo := header.Bounds.Min
			snap.Range.Min = &lo
		}

		if header.Bounds.HasMax {
			hi := header.Bounds.Max
			snap.Range.Max = &hi
		}
	}

	for name, s := range d.All() {
		ss := SeriesSnapshot{
			Name:     name,
			Count:    s.Len(),
			Step:     s.Step(),
			Uniform:  s.Uniform(),
			MinValue: s.MinValue(),
			MaxValue: s.MaxValue(),
			Mean:     s.Mean(),
			StdDev:   s.StdDev(),
		}

		if withSamples {
			ss.Samples = s.Samples()
		}

		snap.Series = append(snap.Series, ss)
	}

	return snap
}
