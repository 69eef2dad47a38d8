// Package spectral holds the canonical in-memory model for spectral data:
// metadata, sample series and the immutable [Dataset] produced by a
// successful read, together with the validator that guards it.
//
// Readers for concrete file formats live in sibling packages (ampas, cgats)
// and feed [SeriesBuilder] values through [Assemble], so every format shares
// one set of axis invariants:
//
//   - wavelengths strictly increase in file order (no silent reordering);
//   - no wavelength occurs twice in a series;
//   - every sample lies inside the header-declared range, if any;
//   - every number is finite.
//
// A Dataset is never mutated after construction and can be shared freely
// between goroutines.
package spectral
