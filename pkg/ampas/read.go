package ampas

import (
	"cmp"
	"errors"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/Sumatoshi-tech/specio/pkg/spectral"
)

// Format tags for datasets produced by this package.
const (
	FormatText = "ampas"
	FormatJSON = "ampas-json"
)

// Options configures a read.
type Options struct {
	// Source names the input in diagnostics, usually its path.
	Source string
	// CommentMarker starts a comment. Empty means DefaultCommentMarker.
	CommentMarker string
	// Tolerance is the relative uniform-step tolerance. Zero means
	// spectral.DefaultUniformTolerance.
	Tolerance float64
	// RejectUnknownLines turns unclassifiable lines into read errors instead
	// of skipping them. Unknown header keys are always accepted.
	RejectUnknownLines bool
	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// DefaultOptions returns the lenient defaults.
func DefaultOptions() Options {
	return Options{
		CommentMarker: DefaultCommentMarker,
		Tolerance:     spectral.DefaultUniformTolerance,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return o.Logger
}

// ReadFile reads the AMPAS text file at path. See [Read].
func ReadFile(path string, opts Options) (*spectral.Dataset, error) {
	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, &spectral.IOError{Path: path, Err: openErr}
	}
	defer f.Close()

	if opts.Source == "" {
		opts.Source = path
	}

	return Read(f, opts)
}

// Read consumes r and returns a validated dataset. A failure to read r is
// returned at once as a [spectral.IOError]; every other problem is collected
// into a single [spectral.ReadError]. No dataset is returned with an error.
func Read(r io.Reader, opts Options) (*spectral.Dataset, error) {
	data, readErr := io.ReadAll(r)
	if readErr != nil {
		return nil, &spectral.IOError{Path: opts.Source, Err: readErr}
	}

	return Parse(string(data), opts)
}

// Parse reads AMPAS text already held in memory.
func Parse(text string, opts Options) (*spectral.Dataset, error) {
	log := opts.logger()

	var (
		headerLines []RawLine
		tableLines  []RawLine
		problems    []error
	)

	for rl := range Tokenize(text, TokenizerOptions{CommentMarker: opts.CommentMarker}) {
		switch rl.Kind {
		case KindHeader:
			headerLines = append(headerLines, rl)
		case KindColumnDef, KindData:
			tableLines = append(tableLines, rl)
		case KindUnknown:
			if opts.RejectUnknownLines {
				problems = append(problems, &spectral.UnknownLineError{Line: rl.Number, Raw: rl.Raw})

				continue
			}

			log.Debug("skipping unrecognized line", "source", opts.Source, "line", rl.Number)
		case KindBlank, KindComment:
		}
	}

	meta, headerErrs := ParseHeader(headerLines)
	builders, rowErrs := ParseTable(tableLines)

	problems = append(problems, headerErrs...)
	problems = append(problems, rowErrs...)

	if len(problems) > 0 {
		sortByLine(problems)

		return nil, spectral.NewReadError(opts.Source, problems...)
	}

	ds, err := spectral.Assemble(meta, builders, spectral.Options{Format: FormatText, Tolerance: opts.Tolerance})
	if err != nil {
		return nil, spectral.NewReadError(opts.Source, err)
	}

	log.Debug("read spectral dataset",
		"source", opts.Source, "series", ds.Len(), "samples", ds.Summary().Samples)

	return ds, nil
}

func sortByLine(problems []error) {
	slices.SortStableFunc(problems, func(a, b error) int {
		return cmp.Compare(lineOf(a), lineOf(b))
	})
}

func lineOf(err error) int {
	var (
		headerErr  *spectral.MalformedHeaderError
		rowErr     *spectral.MalformedDataRowError
		unknownErr *spectral.UnknownLineError
	)

	switch {
	case errors.As(err, &headerErr):
		return headerErr.Line
	case errors.As(err, &rowErr):
		return rowErr.Line
	case errors.As(err, &unknownErr):
		return unknownErr.Line
	default:
		return 0
	}
}
