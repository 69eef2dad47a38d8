package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/specio/pkg/observability"
	"github.com/Sumatoshi-tech/specio/pkg/render"
	"github.com/Sumatoshi-tech/specio/pkg/specio"
)

type checkOptions struct {
	workers     int
	noColor     bool
	metricsFile string
	inputFormat string
}

func newCheckCommand(a *app) *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check <file|dir>...",
		Short: "Validate spectral files and report every problem",
		Long: `Read every given file, and every file with a known spectral extension
under the given directories, and report each problem with its location.

Exits with status 2 when any file has problems.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), a, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.workers, "workers", "j", -1, "files read in parallel (default: batch.workers, 0 = one per CPU)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus textfile metrics for this run to the given path")
	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "force the input format for every file")

	return cmd
}

func runCheck(ctx context.Context, a *app, args []string, opts checkOptions) error {
	paths, err := collectPaths(args)
	if err != nil {
		return err
	}

	var (
		meter  metric.Meter = a.providers.Meter
		export *observability.PrometheusExport
	)

	if opts.metricsFile != "" {
		export, err = observability.NewPrometheusExport()
		if err != nil {
			return err
		}

		defer func() { _ = export.Shutdown(context.WithoutCancel(ctx)) }()

		meter = export.Meter()
	}

	metrics, err := observability.NewReadMetrics(meter)
	if err != nil {
		return err
	}

	reader, err := a.newReader(opts.inputFormat, metrics)
	if err != nil {
		return err
	}

	workers := opts.workers
	if workers < 0 {
		workers = a.cfg.Batch.Workers
	}

	results, batchErr := reader.ReadAll(ctx, paths, workers)

	failed, err := report(a, results, opts.noColor)
	if err != nil {
		return err
	}

	if export != nil {
		if err := export.WriteTextfile(opts.metricsFile); err != nil {
			return err
		}
	}

	if batchErr != nil {
		return batchErr
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrProblems, failed, len(results))
	}

	return nil
}

func report(a *app, results []specio.Result, noColor bool) (int, error) {
	out := render.NewReporter(a.stdout, noColor)
	failed := 0

	for _, res := range results {
		if res.Err != nil {
			failed++

			if err := out.Failed(res.Path, res.Err); err != nil {
				return failed, err
			}

			continue
		}

		if a.quiet {
			continue
		}

		if err := out.OK(res.Path, res.Dataset.Summary()); err != nil {
			return failed, err
		}
	}

	return failed, nil
}

// collectPaths expands directories into the files below them whose
// extension names a registered format. Explicit file arguments are kept as
// given, whatever their extension.
func collectPaths(args []string) ([]string, error) {
	var paths []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)

			continue
		}

		var found []string

		walkErr := filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				return nil
			}

			if format, _ := specio.FormatForPath(path); format != "" {
				found = append(found, path)
			}

			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("scan %s: %w", arg, walkErr)
		}

		slices.Sort(found)
		paths = append(paths, found...)
	}

	return paths, nil
}
