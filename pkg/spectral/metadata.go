package spectral

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
)

// Unit is the unit system of a wavelength axis.
type Unit string

// Supported wavelength units.
const (
	UnitUnknown    Unit = ""
	UnitNanometer  Unit = "nm"
	UnitAngstrom   Unit = "angstrom"
	UnitMicrometer Unit = "um"
)

// Conversion factors to nanometres.
const (
	nanometersPerAngstrom   = 0.1
	nanometersPerMicrometer = 1000
)

// ErrUnknownUnit is returned by [ParseUnit] for unrecognised unit names.
var ErrUnknownUnit = errors.New("unknown wavelength unit")

var unitAliases = map[string]Unit{
	"nm":          UnitNanometer,
	"nanometer":   UnitNanometer,
	"nanometers":  UnitNanometer,
	"nanometre":   UnitNanometer,
	"nanometres":  UnitNanometer,
	"a":           UnitAngstrom,
	"å":           UnitAngstrom,
	"angstrom":    UnitAngstrom,
	"angstroms":   UnitAngstrom,
	"ångström":    UnitAngstrom,
	"um":          UnitMicrometer,
	"µm":          UnitMicrometer,
	"μm":          UnitMicrometer,
	"micrometer":  UnitMicrometer,
	"micrometers": UnitMicrometer,
	"micrometre":  UnitMicrometer,
	"micrometres": UnitMicrometer,
	"micron":      UnitMicrometer,
	"microns":     UnitMicrometer,
}

// ParseUnit maps a unit name (case-insensitive, common spellings) to a [Unit].
func ParseUnit(s string) (Unit, error) {
	unit, ok := unitAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return UnitUnknown, fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}

	return unit, nil
}

// ToNanometers converts a wavelength expressed in u to nanometres.
// An unknown unit is assumed to be nanometres already.
func (u Unit) ToNanometers(v float64) float64 {
	switch u {
	case UnitAngstrom:
		return v * nanometersPerAngstrom
	case UnitMicrometer:
		return v * nanometersPerMicrometer
	case UnitUnknown, UnitNanometer:
		return v
	default:
		return v
	}
}

// Bounds is a wavelength range declared in a header. Either end may be absent.
type Bounds struct {
	Min    float64
	Max    float64
	HasMin bool
	HasMax bool
}

// Declared reports whether at least one bound is present.
func (b Bounds) Declared() bool {
	return b.HasMin || b.HasMax
}

// Contains reports whether w lies inside the declared bounds (inclusive).
func (b Bounds) Contains(w float64) bool {
	if b.HasMin && w < b.Min {
		return false
	}

	if b.HasMax && w > b.Max {
		return false
	}

	return !math.IsNaN(w)
}

func (b Bounds) String() string {
	lo, hi := "-inf", "+inf"

	if b.HasMin {
		lo = formatFloat(b.Min)
	}

	if b.HasMax {
		hi = formatFloat(b.Max)
	}

	return "[" + lo + ", " + hi + "]"
}

// Header holds the strongly-typed view of the recognised metadata keys.
type Header struct {
	Units    Unit
	Bounds   Bounds
	SampleID string
}

// Metadata is the immutable key/value metadata of a dataset plus its typed
// [Header]. Keys are stored normalised (see [NormalizeKey]).
type Metadata struct {
	values map[string]string
	header Header
}

// NewMetadata copies values into a new Metadata with normalised keys. Keys that
// collide after normalisation resolve in sorted order of the original keys;
// readers resolve last-write-wins before calling.
func NewMetadata(values map[string]string, header Header) Metadata {
	normalized := make(map[string]string, len(values))

	for _, key := range slices.Sorted(maps.Keys(values)) {
		normalized[NormalizeKey(key)] = values[key]
	}

	return Metadata{values: normalized, header: header}
}

// NormalizeKey lower-cases key and collapses inner whitespace, dashes and dots
// into single underscores: "Sample Name" and "sample-name" become "sample_name".
func NormalizeKey(key string) string {
	fields := strings.FieldsFunc(strings.ToLower(key), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '-' || r == '.' || r == '_'
	})

	return strings.Join(fields, "_")
}

// Get returns the raw value stored under key.
func (m Metadata) Get(key string) (string, bool) {
	v, ok := m.values[NormalizeKey(key)]

	return v, ok
}

// Keys returns the normalised keys in sorted order.
func (m Metadata) Keys() []string {
	return slices.Sorted(maps.Keys(m.values))
}

// Len returns the number of stored keys.
func (m Metadata) Len() int {
	return len(m.values)
}

// Values returns a copy of the key/value map.
func (m Metadata) Values() map[string]string {
	return maps.Clone(m.values)
}

// Header returns the typed header fields.
func (m Metadata) Header() Header {
	return m.header
}

// Units returns the declared wavelength unit, or [UnitUnknown].
func (m Metadata) Units() Unit {
	return m.header.Units
}

// Bounds returns the declared wavelength range.
func (m Metadata) Bounds() Bounds {
	return m.header.Bounds
}

// SampleID returns the declared sample identifier.
func (m Metadata) SampleID() string {
	return m.header.SampleID
}
