package ampas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/specio/pkg/spectral"
)

const (
	schemaFile = "ampas-schema.json"

	// spectralUnitsKey holds spectral_data.units, the unit of the sample values.
	spectralUnitsKey = "spectral_units"
)

// ErrInvalidDocument indicates input that is not a JSON object.
var ErrInvalidDocument = errors.New("invalid AMPAS JSON document")

// DocumentError reports JSON that cannot be decoded at all.
type DocumentError struct {
	Line int
	Err  error
}

func (e *DocumentError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v: %v", e.Line, ErrInvalidDocument, e.Err)
	}

	return fmt.Sprintf("%v: %v", ErrInvalidDocument, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// Is matches [ErrInvalidDocument].
func (e *DocumentError) Is(target error) bool { return target == ErrInvalidDocument }

var loadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	schemaBytes, err := SchemaFS.ReadFile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("read embedded schema: %w", err)
	}

	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
})

// SchemaReady compiles the embedded document schema, reporting whether JSON
// input can be validated.
func SchemaReady() error {
	_, err := loadSchema()

	return err
}

type document struct {
	Header       map[string]any `json:"header"`
	SpectralData struct {
		Units string `json:"units"`
		Index struct {
			Main []string `json:"main"`
		} `json:"index"`
		Data struct {
			Main json.RawMessage `json:"main"`
		} `json:"data"`
	} `json:"spectral_data"`
}

// ReadJSONFile reads the AMPAS JSON file at path. See [ReadJSON].
func ReadJSONFile(path string, opts Options) (*spectral.Dataset, error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, &spectral.IOError{Path: path, Err: readErr}
	}

	if opts.Source == "" {
		opts.Source = path
	}

	return ParseJSON(data, opts)
}

// ReadJSON consumes an AMPAS JSON document: a "header" object and a
// "spectral_data" object whose data.main maps wavelength keys to one value
// per series. Keys are taken in document order.
func ReadJSON(r io.Reader, opts Options) (*spectral.Dataset, error) {
	data, readErr := io.ReadAll(r)
	if readErr != nil {
		return nil, &spectral.IOError{Path: opts.Source, Err: readErr}
	}

	return ParseJSON(data, opts)
}

// ParseJSON reads an AMPAS JSON document already held in memory.
func ParseJSON(data []byte, opts Options) (*spectral.Dataset, error) {
	var raw any
	if syntaxErr := json.Unmarshal(data, &raw); syntaxErr != nil {
		return nil, spectral.NewReadError(opts.Source, documentError(data, syntaxErr))
	}

	if violations := validateDocument(data); len(violations) > 0 {
		return nil, spectral.NewReadError(opts.Source, violations...)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc document
	if decodeErr := dec.Decode(&doc); decodeErr != nil {
		return nil, spectral.NewReadError(opts.Source, documentError(data, decodeErr))
	}

	meta, problems := BuildMetadata(headerAssignments(doc))

	hdr := meta.Header()
	if hdr.Units == spectral.UnitUnknown {
		hdr.Units = spectral.UnitNanometer
		meta = spectral.NewMetadata(meta.Values(), hdr)
	}

	builders, rowErrs := decodeMain(doc.SpectralData.Data.Main, doc.SpectralData.Index.Main)
	problems = append(problems, rowErrs...)

	if len(problems) > 0 {
		return nil, spectral.NewReadError(opts.Source, problems...)
	}

	ds, err := spectral.Assemble(meta, builders, spectral.Options{Format: FormatJSON, Tolerance: opts.Tolerance})
	if err != nil {
		return nil, spectral.NewReadError(opts.Source, err)
	}

	opts.logger().Debug("read spectral dataset",
		"source", opts.Source, "format", FormatJSON, "series", ds.Len())

	return ds, nil
}

func validateDocument(data []byte) []error {
	schema, schemaErr := loadSchema()
	if schemaErr != nil {
		return []error{schemaErr}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return []error{&DocumentError{Err: err}}
	}

	if result.Valid() {
		return nil
	}

	violations := make([]error, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		violations = append(violations, &spectral.MalformedHeaderError{
			Key: re.Field(),
			Err: errors.New(re.Description()),
		})
	}

	return violations
}

func documentError(data []byte, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &DocumentError{Line: lineAt(data, syntaxErr.Offset), Err: err}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &DocumentError{Line: lineAt(data, typeErr.Offset), Err: err}
	}

	return &DocumentError{Err: err}
}

func lineAt(data []byte, offset int64) int {
	offset = min(max(offset, 0), int64(len(data)))

	return bytes.Count(data[:offset], []byte{'\n'}) + 1
}

// headerAssignments flattens the header object in key order, followed by
// spectral_data.units.
func headerAssignments(doc document) []Assignment {
	keys := slices.Sorted(maps.Keys(doc.Header))
	assignments := make([]Assignment, 0, len(keys)+1)

	for _, key := range keys {
		assignments = append(assignments, Assignment{Key: key, Value: stringify(doc.Header[key])})
	}

	if doc.SpectralData.Units != "" {
		assignments = append(assignments, Assignment{Key: spectralUnitsKey, Value: doc.SpectralData.Units})
	}

	return assignments
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}

		return string(encoded)
	}
}

// decodeMain walks data.main token by token so file order survives decoding.
func decodeMain(raw json.RawMessage, names []string) ([]*spectral.SeriesBuilder, []error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	if _, err := dec.Token(); err != nil {
		return nil, []error{&DocumentError{Err: err}}
	}

	var (
		builders []*spectral.SeriesBuilder
		problems []error
	)

	if len(names) > 0 {
		builders = newBuilders(names)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, append(problems, &DocumentError{Err: err})
		}

		key, _ := keyTok.(string)

		var values []float64
		if decodeErr := dec.Decode(&values); decodeErr != nil {
			return nil, append(problems, &DocumentError{Err: decodeErr})
		}

		if builders == nil {
			builders = newBuilders(defaultNames(len(values)))
		}

		wavelength, parseErr := strconv.ParseFloat(strings.TrimSpace(key), 64)
		if parseErr != nil || !isFinite(wavelength) {
			problems = append(problems, &spectral.MalformedDataRowError{
				Raw:    key,
				Reason: "wavelength key is not a finite number",
			})

			continue
		}

		if len(values) != len(builders) {
			problems = append(problems, &spectral.MalformedDataRowError{
				Raw:    key,
				Reason: fmt.Sprintf("expected %d values, got %d", len(builders), len(values)),
			})

			continue
		}

		for i, b := range builders {
			b.Append(wavelength, values[i])
		}
	}

	return builders, problems
}

func newBuilders(names []string) []*spectral.SeriesBuilder {
	builders := make([]*spectral.SeriesBuilder, len(names))
	for i, name := range names {
		builders[i] = spectral.NewSeriesBuilder(name)
	}

	return builders
}

// defaultNames names the columns of a document without index.main: a single
// column stays unnamed, several become "Set 1", "Set 2" and so on.
func defaultNames(n int) []string {
	if n <= 1 {
		return []string{""}
	}

	names := make([]string, n)
	for i := range names {
		names[i] = "Set " + strconv.Itoa(i+1)
	}

	return names
}
