package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/specio/pkg/render"
	"github.com/Sumatoshi-tech/specio/pkg/specio"
)

const defaultDiffContext = 3

type diffOptions struct {
	context     int
	samples     bool
	noColor     bool
	inputFormat string
}

func newDiffCommand(a *app) *cobra.Command {
	var opts diffOptions

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two spectral datasets",
		Long: `Read two spectral files, possibly in different formats, and print the
differences between their canonical YAML renderings.

Exits with status 1 when the datasets differ.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), a, args[0], args[1], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.context, "context", "U", defaultDiffContext, "unchanged lines shown around each change (-1 = all)")
	cmd.Flags().BoolVar(&opts.samples, "samples", true, "compare every sample, not only statistics")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "force the input format for both files")

	return cmd
}

func runDiff(ctx context.Context, a *app, oldPath, newPath string, opts diffOptions) error {
	reader, err := a.newReader(opts.inputFormat, nil)
	if err != nil {
		return err
	}

	oldText, err := canonicalFile(ctx, a, reader, oldPath, opts)
	if err != nil {
		return err
	}

	newText, err := canonicalFile(ctx, a, reader, newPath, opts)
	if err != nil {
		return err
	}

	diffs := render.Diff(oldText, newText)
	if !render.Changed(diffs) {
		return nil
	}

	if _, err := fmt.Fprintf(a.stdout, "--- %s\n+++ %s\n", oldPath, newPath); err != nil {
		return err
	}

	if err := render.WriteDiff(a.stdout, diffs, opts.context, opts.noColor); err != nil {
		return err
	}

	return ErrDifferent
}

func canonicalFile(ctx context.Context, a *app, reader *specio.Reader, path string, opts diffOptions) (string, error) {
	ds, err := reader.ReadFile(ctx, path)
	if err != nil {
		if repErr := render.NewReporter(a.stderr, opts.noColor).Failed(path, err); repErr != nil {
			return "", repErr
		}

		return "", fmt.Errorf("%w: %s", ErrProblems, path)
	}

	return render.Canonical(ds.Snapshot(opts.samples))
}
