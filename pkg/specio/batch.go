package specio

import (
	"context"
	"fmt"
	"runtime"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/specio/pkg/observability"
	"github.com/Sumatoshi-tech/specio/pkg/spectral"
)

// Result is the outcome of reading one file of a batch.
type Result struct {
	Path    string
	Dataset *spectral.Dataset
	Err     error
}

// ReadAll reads paths with at most workers files in flight; zero or less
// means one per CPU. Results come back in input order and a failed file
// never stops the others. The returned error is non-nil only when ctx ends
// before every file was started.
func (r *Reader) ReadAll(ctx context.Context, paths []string, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ctx, span := r.tracer.Start(ctx, observability.SpanBatch, trace.WithAttributes(
		attribute.Int("specio.files", len(paths)),
		attribute.Int("specio.workers", workers),
	))
	defer span.End()

	results := make([]Result, len(paths))
	started := 0

	var g errgroup.Group

	g.SetLimit(workers)

	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}

		started++

		g.Go(func() error {
			ds, err := r.ReadFile(ctx, path)
			results[i] = Result{Path: path, Dataset: ds, Err: err}

			return nil
		})
	}

	_ = g.Wait()

	failed := 0

	for i := range results {
		if i >= started {
			results[i] = Result{Path: paths[i], Err: fmt.Errorf("read %s: %w", paths[i], ctx.Err())}
		}

		if results[i].Err != nil {
			failed++
		}
	}

	span.SetAttributes(attribute.Int("specio.failed", failed))

	if failed > 0 {
		r.logger.WarnContext(ctx, "batch finished with failures", "files", len(paths), "failed", failed)
	}

	if started < len(paths) {
		return results, fmt.Errorf("batch interrupted after %d of %d files: %w", started, len(paths), ctx.Err())
	}

	return results, nil
}
