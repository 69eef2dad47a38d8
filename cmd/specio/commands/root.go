// Package commands implements the specio cobra commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/specio/pkg/config"
	"github.com/Sumatoshi-tech/specio/pkg/observability"
	"github.com/Sumatoshi-tech/specio/pkg/specio"
	"github.com/Sumatoshi-tech/specio/pkg/version"
)

// Exit statuses beyond the generic failure.
const (
	exitFailure  = 1
	exitProblems = 2
)

var (
	// ErrProblems reports that at least one input failed to read. The
	// diagnostics were already printed.
	ErrProblems = errors.New("spectral data has problems")
	// ErrDifferent reports that `specio diff` found a difference.
	ErrDifferent = errors.New("datasets differ")
)

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrProblems):
		return exitProblems
	default:
		return exitFailure
	}
}

// Silent reports whether err was already explained to the user.
func Silent(err error) bool {
	return errors.Is(err, ErrProblems) || errors.Is(err, ErrDifferent)
}

// app is the state shared by every subcommand: loaded configuration and
// initialized telemetry.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool
	quiet      bool

	mode      observability.AppMode
	cfg       *config.Config
	providers observability.Providers
}

// NewRootCommand builds the specio command tree writing to stdout and stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, mode: observability.ModeCLI}

	root := &cobra.Command{
		Use:   "specio",
		Short: "Read, validate and compare spectral data files",
		Long: `specio reads spectral power distribution and sensitivity files
(AMPAS text, AMPAS JSON, CGATS/Argyll) into validated datasets.

Commands:
  inspect   Print one dataset as a table, JSON or YAML
  check     Validate many files and report every problem
  diff      Compare two datasets
  mcp       Serve the readers as MCP tools over stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
	}

	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: specio.yaml in ., ./config, /etc/specio)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress output except problems")

	root.AddCommand(
		newInspectCommand(a),
		newCheckCommand(a),
		newDiffCommand(a),
		newMCPCommand(a),
		newVersionCommand(a),
	)

	return root
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	a.cfg = cfg

	providers, err := observability.Init(ctx, a.observabilityConfig())
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	a.providers = providers

	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if a.providers.Shutdown == nil {
		return nil
	}

	err := a.providers.Shutdown(context.WithoutCancel(ctx))
	if err != nil {
		a.providers.Logger.Warn("observability shutdown failed", "error", err)
	}

	return nil
}

func (a *app) observabilityConfig() observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = a.mode
	obsCfg.Environment = a.cfg.Observability.Environment
	obsCfg.OTLPEndpoint = a.cfg.Observability.OTLPEndpoint
	obsCfg.OTLPInsecure = a.cfg.Observability.OTLPInsecure
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	obsCfg.SampleRatio = a.cfg.Observability.SampleRatio
	obsCfg.LogJSON = strings.EqualFold(a.cfg.Logging.Format, "json") || a.mode == observability.ModeMCP
	obsCfg.LogLevel = logLevel(a.cfg.Logging.Level)

	switch {
	case a.verbose:
		obsCfg.LogLevel = slog.LevelDebug
		obsCfg.TraceVerbose = true
	case a.quiet:
		obsCfg.LogLevel = slog.LevelError
	}

	return obsCfg
}

func logLevel(name string) slog.Level {
	var level slog.Level

	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}

	return level
}

// newReader builds a Reader from the reader configuration and the telemetry
// set up for this run.
func (a *app) newReader(format string, metrics *observability.ReadMetrics) (*specio.Reader, error) {
	maxSize, err := a.cfg.Reader.MaxFileSizeBytes()
	if err != nil {
		return nil, err
	}

	return specio.NewReader(specio.Options{
		CommentMarker:      a.cfg.Reader.CommentMarker,
		Tolerance:          a.cfg.Reader.UniformTolerance,
		RejectUnknownLines: a.cfg.Reader.RejectUnknownLines,
		MaxFileSize:        maxSize,
		Format:             format,
		Logger:             a.providers.Logger,
		Tracer:             a.providers.Tracer,
		Metrics:            metrics,
	})
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(a.stdout, version.String())

			return err
		},
	}
}
