package specio

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/specio/pkg/ampas"
	"github.com/Sumatoshi-tech/specio/pkg/cgats"
)

// ErrUnknownFormat is returned when a forced format name is not registered.
var ErrUnknownFormat = errors.New("unknown spectral format")

const extLZ4 = ".lz4"

// sniffWindow bounds how much of a file content sniffing looks at.
const sniffWindow = 4096

var extensions = map[string]string{
	".spd":   ampas.FormatText,
	".txt":   ampas.FormatText,
	".ampas": ampas.FormatText,
	".json":  ampas.FormatJSON,
	".sp":    cgats.Format,
	".ti3":   cgats.Format,
	".cgats": cgats.Format,
}

// Formats lists the registered format names in a stable order.
func Formats() []string {
	return []string{ampas.FormatText, ampas.FormatJSON, cgats.Format}
}

// CheckFormat reports whether name is registered.
func CheckFormat(name string) error {
	if !slices.Contains(Formats(), name) {
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
	}

	return nil
}

// FormatForPath maps a file name to a format by extension. A trailing .lz4 is
// stripped first and reported through compressed. An unregistered extension
// yields an empty format.
func FormatForPath(path string) (format string, compressed bool) {
	name := strings.ToLower(filepath.Base(path))

	if strings.HasSuffix(name, extLZ4) {
		compressed = true
		name = strings.TrimSuffix(name, extLZ4)
	}

	return extensions[filepath.Ext(name)], compressed
}

// Sniff guesses the format of data from its first bytes: a JSON object, a
// CGATS file (a CGATS signature or a BEGIN_DATA section), or AMPAS text.
func Sniff(data []byte) string {
	head := data[:min(len(data), sniffWindow)]
	head = bytes.TrimPrefix(head, []byte("\uFEFF"))

	trimmed := bytes.TrimLeft(head, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return ampas.FormatJSON
	}

	if bytes.HasPrefix(trimmed, []byte("CGATS")) || bytes.Contains(head, []byte("BEGIN_DATA")) {
		return cgats.Format
	}

	return ampas.FormatText
}
