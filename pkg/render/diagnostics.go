package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/specio/pkg/spectral"
)

// Reporter prints one status line per checked source, followed by a
// location-prefixed line per problem for failed sources. It is not safe for
// concurrent use.
type Reporter struct {
	w io.Writer

	ok    *color.Color
	fail  *color.Color
	parse *color.Color
	check *color.Color
	dim   *color.Color
}

// NewReporter writes to w. With noColor set, no escape sequences are emitted
// regardless of the terminal.
func NewReporter(w io.Writer, noColor bool) *Reporter {
	r := &Reporter{
		w:     w,
		ok:    color.New(color.FgGreen),
		fail:  color.New(color.FgRed, color.Bold),
		parse: color.New(color.FgRed),
		check: color.New(color.FgYellow),
		dim:   color.New(color.Faint),
	}

	if noColor {
		for _, c := range []*color.Color{r.ok, r.fail, r.parse, r.check, r.dim} {
			c.DisableColor()
		}
	}

	return r
}

// OK reports a source that read cleanly.
func (r *Reporter) OK(source string, sum spectral.Summary) error {
	_, err := fmt.Fprintf(r.w, "%s: %s %s\n", source, r.ok.Sprint("ok"),
		r.dim.Sprintf("(%d series, %d samples, %s..%s)",
			sum.Series, sum.Samples, number(sum.MinWavelength), number(sum.MaxWavelength)))
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// Failed reports every problem behind err, in the order they were collected.
func (r *Reporter) Failed(source string, err error) error {
	problems := spectral.Problems(err)

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s: %s\n", source, r.fail.Sprintf("%s", plural(len(problems), "problem")))

	for _, p := range problems {
		line := spectral.Line(p)
		kind := spectral.Kind(p)

		loc := source
		if line > 0 {
			loc += ":" + strconv.Itoa(line)
		}

		msg := strings.TrimPrefix(p.Error(), "line "+strconv.Itoa(line)+": ")

		fmt.Fprintf(&sb, "  %s: %s: %s\n", loc, r.colorFor(kind).Sprint(kind), msg)
	}

	if _, werr := io.WriteString(r.w, sb.String()); werr != nil {
		return fmt.Errorf("write report: %w", werr)
	}

	return nil
}

// colorFor separates problems in the text itself from problems in what the
// text describes.
func (r *Reporter) colorFor(kind string) *color.Color {
	switch kind {
	case "malformed-header", "malformed-row", "unknown-line", "io", "file-too-large":
		return r.parse
	default:
		return r.check
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}

	return strconv.Itoa(n) + " " + word + "s"
}
