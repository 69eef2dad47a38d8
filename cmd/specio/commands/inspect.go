package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/specio/pkg/render"
	"github.com/Sumatoshi-tech/specio/pkg/specio"
)

type inspectOptions struct {
	output      string
	inputFormat string
	samples     bool
	noColor     bool
}

func newInspectCommand(a *app) *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Read one spectral file and print its metadata and statistics",
		Long: `Read one spectral file and print its metadata, per-series statistics
and, with --samples, every sample.

The input format is taken from the extension (.spd .txt .ampas, .json,
.sp .ti3 .cgats, optionally followed by .lz4) or guessed from the content.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, a, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", string(render.FormatText),
		"output format: "+joinFormats(render.Formats()))
	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "",
		"force the input format: "+strings.Join(specio.Formats(), ", "))
	cmd.Flags().BoolVar(&opts.samples, "samples", false, "include every sample")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored diagnostics")

	return cmd
}

func runInspect(cmd *cobra.Command, a *app, path string, opts inspectOptions) error {
	format, err := render.ParseFormat(opts.output)
	if err != nil {
		return err
	}

	enc, err := render.NewEncoder(format)
	if err != nil {
		return err
	}

	reader, err := a.newReader(opts.inputFormat, nil)
	if err != nil {
		return err
	}

	ds, err := reader.ReadFile(cmd.Context(), path)
	if err != nil {
		if repErr := render.NewReporter(a.stderr, opts.noColor).Failed(path, err); repErr != nil {
			return repErr
		}

		return fmt.Errorf("%w: %s", ErrProblems, path)
	}

	return enc.Encode(a.stdout, ds.Snapshot(opts.samples))
}

func joinFormats(formats []render.Format) string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}

	return strings.Join(names, ", ")
}
