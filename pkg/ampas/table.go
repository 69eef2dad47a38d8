package ampas

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/specio/pkg/spectral"
)

// columnsKey is the pseudo header key used to report a bad column definition.
const columnsKey = "columns"

// ParseTable reads the column definition and data rows into series builders.
// Without a column definition the table is one unnamed series. Bad rows are
// collected and scanning continues, so every row problem is reported in one pass.
func ParseTable(lines []RawLine) ([]*spectral.SeriesBuilder, []error) {
	var (
		columns  *RawLine
		problems []error
	)

	// Only the last definition ahead of the first data row names the columns.
	for i := range lines {
		if lines[i].Kind == KindData {
			break
		}

		if lines[i].Kind == KindColumnDef {
			columns = &lines[i]
		}
	}

	builders := []*spectral.SeriesBuilder{spectral.NewSeriesBuilder("")}

	if columns != nil {
		var colErr error

		builders, colErr = buildersFromLabels(columns)
		if colErr != nil {
			problems = append(problems, colErr)
		}
	}

	row := make([]float64, 1+len(builders))

	for _, rl := range lines {
		if rl.Kind != KindData {
			continue
		}

		if err := parseRow(rl, row); err != nil {
			problems = append(problems, err)

			continue
		}

		for i, b := range builders {
			b.Append(row[0], row[i+1])
		}
	}

	return builders, problems
}

func buildersFromLabels(columns *RawLine) ([]*spectral.SeriesBuilder, error) {
	labels := strings.Fields(columns.Text)
	builders := make([]*spectral.SeriesBuilder, 0, len(labels)-1)
	seen := make(map[string]struct{}, len(labels))

	var dupErr error

	for i, label := range labels {
		if _, dup := seen[label]; dup && dupErr == nil {
			dupErr = &spectral.MalformedHeaderError{
				Line:  columns.Number,
				Key:   columnsKey,
				Value: columns.Text,
				Err:   fmt.Errorf("%w: %q", spectral.ErrDuplicateSeries, label),
			}
		}

		seen[label] = struct{}{}

		// The first label names the wavelength column.
		if i > 0 {
			builders = append(builders, spectral.NewSeriesBuilder(label))
		}
	}

	return builders, dupErr
}

// parseRow fills row with the numbers of one data line.
func parseRow(rl RawLine, row []float64) error {
	fields := strings.Fields(rl.Text)
	if len(fields) != len(row) {
		return rowError(rl, fmt.Sprintf("expected %d columns, got %d", len(row), len(fields)))
	}

	for i, tok := range fields {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return rowError(rl, fmt.Sprintf("column %d: %q is not a number", i+1, tok))
		}

		if !isFinite(v) {
			return rowError(rl, fmt.Sprintf("column %d: non-finite value %q", i+1, tok))
		}

		row[i] = v
	}

	return nil
}

func rowError(rl RawLine, reason string) error {
	return &spectral.MalformedDataRowError{Line: rl.Number, Raw: strings.TrimSpace(rl.Raw), Reason: reason}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
