// Package main generates JSON schemas for the documents specio emits:
// `specio inspect --output json` and the MCP tool results.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/Sumatoshi-tech/specio/pkg/mcp"
	"github.com/Sumatoshi-tech/specio/pkg/spectral"
)

const schemaDraft = "https://json-schema.org/draft-07/schema#"

// Schema represents a JSON Schema.
type Schema struct {
	Schema               string             `json:"$schema,omitempty"`
	Title                string             `json:"title,omitempty"`
	Type                 string             `json:"type,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Ref                  string             `json:"$ref,omitempty"`
	Definitions          map[string]*Schema `json:"definitions,omitempty"`
}

type document struct {
	name  string
	title string
	value any
}

var documents = []document{
	{name: "snapshot", title: "Spectral dataset snapshot", value: spectral.Snapshot{}},
	{name: "check-result", title: "spectral_check result", value: mcp.CheckResult{}},
	{name: "resample-result", title: "spectral_resample result", value: []mcp.ResampledSeries{}},
}

func main() {
	outputDir := flag.String("o", "docs/schemas", "Output directory for schemas")
	flag.Parse()

	if err := run(*outputDir, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(outputDir string, log io.Writer) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, doc := range documents {
		path := filepath.Join(outputDir, doc.name+".schema.json")

		if err := writeSchema(path, generateSchema(doc.title, doc.value)); err != nil {
			return fmt.Errorf("%s: %w", doc.name, err)
		}

		fmt.Fprintf(log, "wrote %s\n", path)
	}

	return nil
}

func generateSchema(title string, v any) *Schema {
	defs := make(map[string]*Schema)

	schema := typeToSchema(reflect.TypeOf(v), defs)

	// The root is inlined so that it can carry the draft and title.
	if schema.Ref != "" {
		name := strings.TrimPrefix(schema.Ref, "#/definitions/")
		schema = defs[name]
		delete(defs, name)
	}

	root := *schema
	root.Schema = schemaDraft
	root.Title = title

	if len(defs) > 0 {
		root.Definitions = defs
	}

	return &root
}

func structToSchema(t reflect.Type, defs map[string]*Schema) *Schema {
	schema := &Schema{Type: "object", Properties: make(map[string]*Schema)}

	for field := range fields(t) {
		name, opts, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}

		schema.Properties[name] = typeToSchema(field.Type, defs)

		if !strings.Contains(opts, "omitempty") {
			schema.Required = append(schema.Required, name)
		}
	}

	return schema
}

func fields(t reflect.Type) func(yield func(reflect.StructField) bool) {
	return func(yield func(reflect.StructField) bool) {
		for i := range t.NumField() {
			if f := t.Field(i); f.IsExported() && !yield(f) {
				return
			}
		}
	}
}

func typeToSchema(t reflect.Type, defs map[string]*Schema) *Schema {
	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}

	case reflect.Bool:
		return &Schema{Type: "boolean"}

	case reflect.Slice, reflect.Array:
		return &Schema{Type: "array", Items: typeToSchema(t.Elem(), defs)}

	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: typeToSchema(t.Elem(), defs)}

	case reflect.Struct:
		if t.Name() == "" {
			return structToSchema(t, defs)
		}

		if _, exists := defs[t.Name()]; !exists {
			defs[t.Name()] = nil
			defs[t.Name()] = structToSchema(t, defs)
		}

		return &Schema{Ref: "#/definitions/" + t.Name()}

	case reflect.Pointer:
		return typeToSchema(t.Elem(), defs)

	default:
		return &Schema{}
	}
}

func writeSchema(path string, schema *Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}

	return nil
}
