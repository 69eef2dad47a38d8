// Package specio reads spectral data files of any supported format. It picks
// the format from the file extension or content, decompresses .lz4 input,
// enforces a size limit, and records a span and read metrics per file.
package specio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pierrec/lz4/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/specio/pkg/ampas"
	"github.com/Sumatoshi-tech/specio/pkg/cgats"
	"github.com/Sumatoshi-tech/specio/pkg/observability"
	"github.com/Sumatoshi-tech/specio/pkg/spectral"
)

// Options configures a [Reader]. The zero value reads with the default
// comment marker and tolerance, no size limit and no telemetry.
type Options struct {
	CommentMarker      string
	Tolerance          float64
	RejectUnknownLines bool

	// MaxFileSize caps the decoded size of one input in bytes. Zero is unlimited.
	MaxFileSize int64

	// Format forces a format instead of detecting it.
	Format string

	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *observability.ReadMetrics
}

// Reader reads spectral files. It holds no per-read state and is safe for
// concurrent use.
type Reader struct {
	opts   Options
	logger *slog.Logger
	tracer trace.Tracer
}

// NewReader returns a Reader. An unknown forced format is reported here
// rather than on every read.
func NewReader(opts Options) (*Reader, error) {
	if opts.Format != "" {
		if err := CheckFormat(opts.Format); err != nil {
			return nil, err
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(observability.TracerName)
	}

	return &Reader{opts: opts, logger: logger, tracer: tracer}, nil
}

// ReadFile reads the file at path.
func (r *Reader) ReadFile(ctx context.Context, path string) (*spectral.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		ioErr := &spectral.IOError{Path: path, Err: err}

		spanCtx, span := r.tracer.Start(ctx, observability.SpanRead, trace.WithAttributes(
			attribute.String("specio.source", filepath.Base(path)),
		))
		r.finish(spanCtx, span, path, "", 0, nil, ioErr)
		span.End()

		return nil, ioErr
	}
	defer f.Close()

	return r.Read(ctx, f, path)
}

// Read reads one input from rd. name is used for format detection by
// extension and in diagnostics; it may be empty.
func (r *Reader) Read(ctx context.Context, rd io.Reader, name string) (ds *spectral.Dataset, err error) {
	if err = ctx.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	format, compressed := FormatForPath(name)

	ctx, span := r.tracer.Start(ctx, observability.SpanRead, trace.WithAttributes(
		attribute.String("specio.source", filepath.Base(name)),
		attribute.Bool("specio.compressed", compressed),
	))
	defer span.End()

	start := time.Now()

	if r.opts.Metrics != nil {
		defer r.opts.Metrics.TrackInflight(ctx)()
	}

	defer func() {
		r.finish(ctx, span, name, format, time.Since(start), ds, err)
	}()

	data, err := r.decode(ctx, rd, name, compressed)
	if err != nil {
		return nil, err
	}

	switch {
	case r.opts.Format != "":
		format = r.opts.Format
	case format == "":
		format = Sniff(data)
		r.logger.DebugContext(ctx, "format sniffed", "source", name, "format", format)
	}

	return r.parse(ctx, data, name, format)
}

// Parse reads in-memory content. format may be empty to use the Reader's
// forced format or content sniffing.
func (r *Reader) Parse(ctx context.Context, data []byte, name, format string) (ds *spectral.Dataset, err error) {
	if format == "" {
		return r.Read(ctx, bytes.NewReader(data), name)
	}

	if err = CheckFormat(format); err != nil {
		return nil, err
	}

	ctx, span := r.tracer.Start(ctx, observability.SpanRead, trace.WithAttributes(
		attribute.String("specio.source", filepath.Base(name)),
	))
	defer span.End()

	start := time.Now()

	if r.opts.Metrics != nil {
		defer r.opts.Metrics.TrackInflight(ctx)()
	}

	defer func() {
		r.finish(ctx, span, name, format, time.Since(start), ds, err)
	}()

	if err = r.checkSize(name, int64(len(data))); err != nil {
		return nil, err
	}

	return r.parse(ctx, data, name, format)
}

func (r *Reader) decode(ctx context.Context, rd io.Reader, name string, compressed bool) ([]byte, error) {
	_, span := r.tracer.Start(ctx, observability.SpanDecode)
	defer span.End()

	if compressed {
		rd = lz4.NewReader(rd)
	}

	if r.opts.MaxFileSize > 0 {
		rd = io.LimitReader(rd, r.opts.MaxFileSize+1)
	}

	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, &spectral.IOError{Path: name, Err: err}
	}

	if err := r.checkSize(name, int64(len(data))); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("specio.bytes", len(data)))

	return data, nil
}

// checkSize enforces MaxFileSize on the decoded size of one input.
func (r *Reader) checkSize(name string, size int64) error {
	if r.opts.MaxFileSize <= 0 || size <= r.opts.MaxFileSize {
		return nil
	}

	return &spectral.IOError{
		Path: name,
		Err:  fmt.Errorf("%w: more than %d bytes", spectral.ErrFileTooLarge, r.opts.MaxFileSize),
	}
}

func (r *Reader) parse(ctx context.Context, data []byte, name, format string) (*spectral.Dataset, error) {
	ctx, span := r.tracer.Start(ctx, observability.SpanParse, trace.WithAttributes(
		attribute.String("specio.format", format),
	))
	defer span.End()

	logger := r.logger.With("source", name)

	opts := ampas.Options{
		Source:             name,
		CommentMarker:      r.opts.CommentMarker,
		Tolerance:          r.opts.Tolerance,
		RejectUnknownLines: r.opts.RejectUnknownLines,
		Logger:             logger,
	}

	switch format {
	case ampas.FormatJSON:
		return ampas.ParseJSON(data, opts)
	case cgats.Format:
		return cgats.Parse(string(data), cgats.Options{Source: name, Tolerance: r.opts.Tolerance, Logger: logger})
	default:
		logger.DebugContext(ctx, "parsing as ampas text", "bytes", len(data))

		return ampas.Parse(string(data), opts)
	}
}

func (r *Reader) finish(
	ctx context.Context, span trace.Span, name, format string, elapsed time.Duration, ds *spectral.Dataset, err error,
) {
	if format == "" {
		format = "unknown"
	}

	span.SetAttributes(attribute.String("specio.format", format))

	if err != nil {
		problems := spectral.Problems(err)
		kinds := make([]string, len(problems))

		for i, p := range problems {
			kinds[i] = spectral.Kind(p)
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		span.SetAttributes(attribute.Int("specio.problems", len(problems)))

		if r.opts.Metrics != nil {
			r.opts.Metrics.RecordRead(ctx, format, observability.StatusError, elapsed, 0)
			r.opts.Metrics.RecordProblems(ctx, kinds)
		}

		r.logger.DebugContext(ctx, "read failed", "source", name, "format", format, "problems", len(problems))

		return
	}

	sum := ds.Summary()

	span.SetAttributes(
		attribute.Int("specio.series", sum.Series),
		attribute.Int("specio.samples", sum.Samples),
	)

	if r.opts.Metrics != nil {
		r.opts.Metrics.RecordRead(ctx, format, observability.StatusOK, elapsed, sum.Samples)
	}

	r.logger.DebugContext(ctx, "read done", "source", name, "format", format,
		"series", sum.Series, "samples", sum.Samples, "elapsed", elapsed)
}
