package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/specio/pkg/spectral"
)

// Canonical renders snap in the YAML form compared by [Diff].
func Canonical(snap spectral.Snapshot) (string, error) {
	var buf bytes.Buffer

	err := YAMLEncoder{}.Encode(&buf, snap)
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

// Diff compares two texts line by line.
func Diff(a, b string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()

	charsA, charsB, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffMain(charsA, charsB, false)

	return dmp.DiffCharsToLines(diffs, lines)
}

// Changed reports whether diffs contains any insertion or deletion.
func Changed(diffs []diffmatchpatch.Diff) bool {
	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffEqual {
			return true
		}
	}

	return false
}

// WriteDiff prints diffs with "-", "+" and " " line prefixes. Unchanged runs
// longer than 2*context lines are collapsed to their edges; a negative
// context prints everything.
func WriteDiff(w io.Writer, diffs []diffmatchpatch.Diff, context int, noColor bool) error {
	del := color.New(color.FgRed)
	ins := color.New(color.FgGreen)
	hunk := color.New(color.FgCyan)

	if noColor {
		del.DisableColor()
		ins.DisableColor()
		hunk.DisableColor()
	}

	var sb strings.Builder

	for i, d := range diffs {
		lines := splitLines(d.Text)

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			for _, l := range lines {
				sb.WriteString(del.Sprint("-"+l) + "\n")
			}
		case diffmatchpatch.DiffInsert:
			for _, l := range lines {
				sb.WriteString(ins.Sprint("+"+l) + "\n")
			}
		case diffmatchpatch.DiffEqual:
			writeContext(&sb, lines, context, i == 0, i == len(diffs)-1, hunk)
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write diff: %w", err)
	}

	return nil
}

func writeContext(sb *strings.Builder, lines []string, context int, first, last bool, hunk *color.Color) {
	if context < 0 {
		for _, l := range lines {
			sb.WriteString(" " + l + "\n")
		}

		return
	}

	head, tail := context, context
	if first {
		head = 0
	}

	if last {
		tail = 0
	}

	if len(lines) <= head+tail {
		for _, l := range lines {
			sb.WriteString(" " + l + "\n")
		}

		return
	}

	for _, l := range lines[:head] {
		sb.WriteString(" " + l + "\n")
	}

	sb.WriteString(hunk.Sprintf("@@ %d unchanged lines @@", len(lines)-head-tail) + "\n")

	for _, l := range lines[len(lines)-tail:] {
		sb.WriteString(" " + l + "\n")
	}
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}

	return strings.Split(s, "\n")
}
