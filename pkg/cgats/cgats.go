// Package cgats reads spectral data stored in CGATS text files as written by
// ArgyllCMS (.sp, .ti3) and other colour tools.
//
// Spectral columns are the SPEC_<nm> fields of the data format; every data
// row is one series. Files whose data format carries no SPEC_ fields are read
// as a flat value block laid out set by set, with the wavelength axis taken
// from SPECTRAL_BANDS, SPECTRAL_START_NM and SPECTRAL_END_NM.
package cgats

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/specio/pkg/ampas"
	"github.com/Sumatoshi-tech/specio/pkg/spectral"
)

// Format is the dataset format tag.
const Format = "cgats"

// Well-known keywords.
const (
	keyBands       = "SPECTRAL_BANDS"
	keyStart       = "SPECTRAL_START_NM"
	keyEnd         = "SPECTRAL_END_NM"
	keySets        = "NUMBER_OF_SETS"
	keyKeyword     = "KEYWORD"
	keyFileType    = "file_type"
	beginFormat    = "BEGIN_DATA_FORMAT"
	endFormat      = "END_DATA_FORMAT"
	beginData      = "BEGIN_DATA"
	endData        = "END_DATA"
	spectralPrefix = "SPEC_"
)

var nameFields = []string{"SAMPLE_ID", "SAMPLE_NAME", "SAMPLE_LOC"}

// ErrLayout indicates a value block that does not match the declared bands and sets.
var ErrLayout = errors.New("data block does not match declared layout")

// Options configures a read.
type Options struct {
	// Source names the input in diagnostics, usually its path.
	Source string
	// Tolerance is the relative uniform-step tolerance. Zero means
	// spectral.DefaultUniformTolerance.
	Tolerance float64
	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

type section int

const (
	inHeader section = iota
	inFormat
	inData
)

type dataRow struct {
	line   int
	raw    string
	fields []string
}

type document struct {
	assignments []ampas.Assignment
	format      []string
	formatLine  int
	dataLine    int
	rows        []dataRow
}

// ReadFile reads the CGATS file at path.
func ReadFile(path string, opts Options) (*spectral.Dataset, error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, &spectral.IOError{Path: path, Err: readErr}
	}

	if opts.Source == "" {
		opts.Source = path
	}

	return Parse(string(data), opts)
}

// Read consumes r and returns a validated dataset.
func Read(r io.Reader, opts Options) (*spectral.Dataset, error) {
	data, readErr := io.ReadAll(r)
	if readErr != nil {
		return nil, &spectral.IOError{Path: opts.Source, Err: readErr}
	}

	return Parse(string(data), opts)
}

// Parse reads CGATS text already held in memory. As with the AMPAS reader,
// every header and row problem is collected before the read fails.
func Parse(text string, opts Options) (*spectral.Dataset, error) {
	doc := scan(text)

	meta, problems := ampas.BuildMetadata(doc.assignments)

	hdr := meta.Header()
	if hdr.Units == spectral.UnitUnknown {
		hdr.Units = spectral.UnitNanometer
		meta = spectral.NewMetadata(meta.Values(), hdr)
	}

	var builders []*spectral.SeriesBuilder

	var tableErrs []error

	if hasSpectralFields(doc.format) {
		builders, tableErrs = fieldTable(doc)
	} else {
		builders, tableErrs = flatTable(doc, meta)
	}

	problems = append(problems, tableErrs...)

	if len(problems) > 0 {
		return nil, spectral.NewReadError(opts.Source, problems...)
	}

	ds, err := spectral.Assemble(meta, builders, spectral.Options{Format: Format, Tolerance: opts.Tolerance})
	if err != nil {
		return nil, spectral.NewReadError(opts.Source, err)
	}

	if opts.Logger != nil {
		opts.Logger.Debug("read spectral dataset",
			"source", opts.Source, "format", Format, "series", ds.Len())
	}

	return ds, nil
}

func scan(text string) document {
	var (
		doc   document
		state = inHeader
		first = true
		line  int
	)

	for raw := range strings.Lines(text) {
		line++

		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		switch state {
		case inHeader:
			switch {
			case trimmed == beginFormat:
				state = inFormat
				doc.formatLine = line
			case trimmed == beginData:
				state = inData
				doc.dataLine = line
			default:
				key, value := splitKeyword(trimmed)

				// The first bare word identifies the file type: CGATS.17, SPECT, CTI3.
				if first && value == "" {
					doc.assignments = append(doc.assignments, ampas.Assignment{Line: line, Key: keyFileType, Value: key})
				} else if key != keyKeyword {
					doc.assignments = append(doc.assignments, ampas.Assignment{Line: line, Key: key, Value: value})
				}
			}

			first = false
		case inFormat:
			if trimmed == endFormat {
				state = inHeader

				continue
			}

			doc.format = append(doc.format, splitFields(trimmed)...)
		case inData:
			if trimmed == endData {
				state = inHeader

				continue
			}

			doc.rows = append(doc.rows, dataRow{line: line, raw: trimmed, fields: splitFields(trimmed)})
		}
	}

	return doc
}

func splitKeyword(text string) (string, string) {
	idx := strings.IndexAny(text, " \t")
	if idx < 0 {
		return text, ""
	}

	return text[:idx], unquote(strings.TrimSpace(text[idx+1:]))
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}

	return s
}

// splitFields splits on whitespace, keeping double-quoted tokens whole.
func splitFields(text string) []string {
	var (
		fields  []string
		current strings.Builder
		quoted  bool
		inToken bool
	)

	flush := func() {
		if inToken {
			fields = append(fields, current.String())
			current.Reset()
			inToken = false
		}
	}

	for _, r := range text {
		switch {
		case r == '"':
			quoted = !quoted
			inToken = true
		case !quoted && (r == ' ' || r == '\t'):
			flush()
		default:
			current.WriteRune(r)
			inToken = true
		}
	}

	flush()

	return fields
}

func hasSpectralFields(format []string) bool {
	for _, f := range format {
		if strings.HasPrefix(f, spectralPrefix) {
			return true
		}
	}

	return false
}

type spectralColumn struct {
	index      int
	wavelength float64
}

// fieldTable builds one series per data row from the SPEC_ columns.
func fieldTable(doc document) ([]*spectral.SeriesBuilder, []error) {
	var (
		columns  []spectralColumn
		nameCol  = -1
		problems []error
	)

	for i, f := range doc.format {
		if w, ok := strings.CutPrefix(f, spectralPrefix); ok {
			wavelength, err := strconv.ParseFloat(w, 64)
			if err != nil {
				problems = append(problems, &spectral.MalformedHeaderError{
					Line: doc.formatLine, Key: beginFormat, Value: f, Err: err,
				})

				continue
			}

			columns = append(columns, spectralColumn{index: i, wavelength: wavelength})

			continue
		}

		if nameCol < 0 && isNameField(f) {
			nameCol = i
		}
	}

	builders := make([]*spectral.SeriesBuilder, 0, len(doc.rows))
	names := newNamer()

	for setIdx, row := range doc.rows {
		if len(row.fields) != len(doc.format) {
			problems = append(problems, &spectral.MalformedDataRowError{
				Line:   row.line,
				Raw:    row.raw,
				Reason: fmt.Sprintf("expected %d fields, got %d", len(doc.format), len(row.fields)),
			})

			continue
		}

		name := "Set " + strconv.Itoa(setIdx+1)
		if nameCol >= 0 && row.fields[nameCol] != "" {
			name = row.fields[nameCol]
		}

		b := spectral.NewSeriesBuilder(names.unique(name))

		rowErr := appendColumns(b, row, columns)
		if rowErr != nil {
			problems = append(problems, rowErr)

			continue
		}

		builders = append(builders, b)
	}

	problems = append(problems, checkSets(doc, len(doc.rows))...)

	return builders, problems
}

func appendColumns(b *spectral.SeriesBuilder, row dataRow, columns []spectralColumn) error {
	for _, col := range columns {
		tok := row.fields[col.index]

		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || !isFinite(v) {
			return &spectral.MalformedDataRowError{
				Line:   row.line,
				Raw:    row.raw,
				Reason: fmt.Sprintf("field %d: %q is not a finite number", col.index+1, tok),
			}
		}

		b.Append(col.wavelength, v)
	}

	return nil
}

// flatTable reads a value block laid out set by set, bands values per set.
func flatTable(doc document, meta spectral.Metadata) ([]*spectral.SeriesBuilder, []error) {
	bandsAt, hasBands := lookup(doc.assignments, keyBands)
	if !hasBands {
		// Without a layout there is nothing to read; the validator reports no samples.
		return nil, nil
	}

	bands, err := strconv.Atoi(bandsAt.Value)
	if err != nil || bands <= 0 {
		return nil, []error{keywordError(bandsAt, err)}
	}

	bounds := meta.Bounds()
	if !bounds.HasMin || !bounds.HasMax {
		return nil, []error{&spectral.MalformedHeaderError{
			Line: bandsAt.Line, Key: keyBands, Value: bandsAt.Value,
			Err: fmt.Errorf("%w: %s and %s are required", ErrLayout, keyStart, keyEnd),
		}}
	}

	var (
		values   []float64
		problems []error
	)

	for _, row := range doc.rows {
		for i, tok := range row.fields {
			v, parseErr := strconv.ParseFloat(tok, 64)
			if parseErr != nil || !isFinite(v) {
				problems = append(problems, &spectral.MalformedDataRowError{
					Line:   row.line,
					Raw:    row.raw,
					Reason: fmt.Sprintf("field %d: %q is not a finite number", i+1, tok),
				})

				break
			}

			values = append(values, v)
		}
	}

	if len(problems) > 0 {
		return nil, problems
	}

	if len(values)%bands != 0 {
		return nil, []error{&spectral.MalformedDataRowError{
			Line:   doc.dataLine,
			Raw:    beginData,
			Reason: fmt.Sprintf("%v: %d values for %d bands", ErrLayout, len(values), bands),
		}}
	}

	sets := len(values) / bands

	step := 0.0
	if bands > 1 {
		step = (bounds.Max - bounds.Min) / float64(bands-1)
	}

	builders := make([]*spectral.SeriesBuilder, sets)

	for s := range sets {
		b := spectral.NewSeriesBuilder("Set " + strconv.Itoa(s+1))
		for i := range bands {
			b.Append(bounds.Min+float64(i)*step, values[s*bands+i])
		}

		builders[s] = b
	}

	return builders, checkSets(doc, sets)
}

// checkSets compares NUMBER_OF_SETS, when declared, with the sets found.
func checkSets(doc document, found int) []error {
	setsAt, ok := lookup(doc.assignments, keySets)
	if !ok {
		return nil
	}

	declared, err := strconv.Atoi(setsAt.Value)
	if err != nil {
		return []error{keywordError(setsAt, err)}
	}

	if declared != found {
		return []error{keywordError(setsAt, fmt.Errorf("%w: found %d sets", ErrLayout, found))}
	}

	return nil
}

func keywordError(a ampas.Assignment, err error) error {
	if err == nil {
		err = ErrLayout
	}

	return &spectral.MalformedHeaderError{Line: a.Line, Key: a.Key, Value: a.Value, Err: err}
}

// lookup returns the last assignment of key.
func lookup(assignments []ampas.Assignment, key string) (ampas.Assignment, bool) {
	for i := len(assignments) - 1; i >= 0; i-- {
		if strings.EqualFold(assignments[i].Key, key) {
			return assignments[i], true
		}
	}

	return ampas.Assignment{}, false
}

func isNameField(f string) bool {
	for _, n := range nameFields {
		if strings.EqualFold(f, n) {
			return true
		}
	}

	return false
}

// namer makes repeated sample names unique: "A", "A (2)", "A (3)". A
// generated name never takes one that a sample already uses.
type namer struct {
	used map[string]bool
	next map[string]int
}

func newNamer() *namer {
	return &namer{used: make(map[string]bool), next: make(map[string]int)}
}

func (n *namer) unique(name string) string {
	if !n.used[name] {
		n.used[name] = true

		return name
	}

	for i := max(n.next[name], 2); ; i++ {
		candidate := name + " (" + strconv.Itoa(i) + ")"
		if !n.used[candidate] {
			n.used[candidate] = true
			n.next[name] = i + 1

			return candidate
		}
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
