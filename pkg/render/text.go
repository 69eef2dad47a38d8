package render

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/specio/pkg/spectral"
)

const unset = "-"

// TextEncoder renders a snapshot as human-readable tables: a header block,
// the metadata, one row per series and, when present, the sample tables.
type TextEncoder struct{}

// Encode implements [Encoder].
func (TextEncoder) Encode(w io.Writer, snap spectral.Snapshot) error {
	blocks := []string{overviewTable(snap)}

	if len(snap.Metadata) > 0 {
		blocks = append(blocks, metadataTable(snap.Metadata))
	}

	blocks = append(blocks, seriesTable(snap))

	for _, s := range snap.Series {
		if len(s.Samples) > 0 {
			blocks = append(blocks, samplesTable(s))
		}
	}

	for i, block := range blocks {
		sep := "\n"
		if i == len(blocks)-1 {
			sep = ""
		}

		if _, err := fmt.Fprintf(w, "%s\n%s", block, sep); err != nil {
			return fmt.Errorf("write text: %w", err)
		}
	}

	return nil
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.SeparateRows = false

	return tbl
}

func overviewTable(snap spectral.Snapshot) string {
	tbl := newTable()
	tbl.Style().Options.SeparateHeader = false

	sum := snap.Summary

	tbl.AppendRows([]table.Row{
		{"Format", snap.Format},
		{"Sample", orUnset(snap.SampleID)},
		{"Units", orUnset(snap.Units)},
		{"Declared range", declaredRange(snap.Range)},
		{"Wavelengths", fmt.Sprintf("%s .. %s", number(sum.MinWavelength), number(sum.MaxWavelength))},
		{"Values", fmt.Sprintf("%s .. %s", number(sum.MinValue), number(sum.MaxValue))},
		{"Spacing", spacing(sum.Uniform, sum.Step)},
		{"Series", humanize.Comma(int64(sum.Series))},
		{"Samples", humanize.Comma(int64(sum.Samples))},
	})

	return tbl.Render()
}

func metadataTable(meta map[string]string) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Key", "Value"})

	for _, k := range keys {
		tbl.AppendRow(table.Row{k, meta[k]})
	}

	return tbl.Render()
}

func seriesTable(snap spectral.Snapshot) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Series", "Samples", "Spacing", "Min", "Max", "Mean", "StdDev"})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})

	for _, s := range snap.Series {
		tbl.AppendRow(table.Row{
			seriesName(s.Name),
			humanize.Comma(int64(s.Count)),
			spacing(s.Uniform, s.Step),
			number(s.MinValue),
			number(s.MaxValue),
			number(s.Mean),
			number(s.StdDev),
		})
	}

	return tbl.Render()
}

func samplesTable(s spectral.SeriesSnapshot) string {
	tbl := newTable()
	tbl.SetTitle("Samples: %s", seriesName(s.Name))
	tbl.AppendHeader(table.Row{"Wavelength", "Value"})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
	})

	for _, smp := range s.Samples {
		tbl.AppendRow(table.Row{number(smp.Wavelength), number(smp.Value)})
	}

	return tbl.Render()
}

func declaredRange(r *spectral.RangeSnapshot) string {
	if r == nil {
		return unset
	}

	lo, hi := unset, unset

	if r.Min != nil {
		lo = number(*r.Min)
	}

	if r.Max != nil {
		hi = number(*r.Max)
	}

	return "[" + lo + ", " + hi + "]"
}

func spacing(uniform bool, step float64) string {
	if !uniform {
		return "irregular"
	}

	return "uniform " + number(step)
}

func seriesName(name string) string {
	if name == "" {
		return "(unnamed)"
	}

	return name
}

func orUnset(s string) string {
	if s == "" {
		return unset
	}

	return s
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
