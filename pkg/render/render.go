// Package render turns dataset snapshots and read problems into text for
// people (tables, colored diagnostics, diffs) and for tools (JSON, YAML).
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/specio/pkg/spectral"
)

// ErrUnknownFormat is returned for an output format other than text, json or yaml.
var ErrUnknownFormat = errors.New("unknown output format")

// Format names an output encoding.
type Format string

// Supported output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists every supported output format.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatYAML}
}

// ParseFormat resolves a case-insensitive format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))

	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Encoder writes one dataset snapshot.
type Encoder interface {
	Encode(w io.Writer, snap spectral.Snapshot) error
}

// NewEncoder returns the encoder for f.
func NewEncoder(f Format) (Encoder, error) {
	switch f {
	case FormatText:
		return TextEncoder{}, nil
	case FormatJSON:
		return JSONEncoder{Indent: "  "}, nil
	case FormatYAML:
		return YAMLEncoder{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// JSONEncoder writes snapshots as JSON, one document per call.
type JSONEncoder struct {
	Indent string
}

// Encode implements [Encoder].
func (e JSONEncoder) Encode(w io.Writer, snap spectral.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", e.Indent)

	err := enc.Encode(snap)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return nil
}

// YAMLEncoder writes snapshots as YAML. Its output is also the canonical form
// compared by [Diff].
type YAMLEncoder struct{}

const yamlIndent = 2

// Encode implements [Encoder].
func (YAMLEncoder) Encode(w io.Writer, snap spectral.Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(yamlIndent)

	err := enc.Encode(snap)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	return nil
}
