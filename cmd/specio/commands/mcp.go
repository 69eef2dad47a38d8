package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/specio/pkg/ampas"
	"github.com/Sumatoshi-tech/specio/pkg/mcp"
	"github.com/Sumatoshi-tech/specio/pkg/observability"
	"github.com/Sumatoshi-tech/specio/pkg/version"
)

type mcpOptions struct {
	debug           bool
	diagnosticsAddr string
}

func newMCPCommand(a *app) *cobra.Command {
	var opts mcpOptions

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the spectral readers as MCP tools over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing the
spectral_read, spectral_check and spectral_resample tools.

Logs are written to stderr as JSON. With --diagnostics-addr an HTTP
listener serves /healthz, /readyz and Prometheus /metrics.`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.mode = observability.ModeMCP
			a.verbose = a.verbose || opts.debug

			return a.setup(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCP(cmd.Context(), a, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.debug, "debug", false, "log every tool call at debug level")
	cmd.Flags().StringVar(&opts.diagnosticsAddr, "diagnostics-addr", "", "serve health and metrics on this address, e.g. localhost:9464")

	return cmd
}

func runMCP(ctx context.Context, a *app, opts mcpOptions) error {
	meter := a.providers.Meter

	if opts.diagnosticsAddr != "" {
		export, err := observability.NewPrometheusExport()
		if err != nil {
			return err
		}

		defer func() { _ = export.Shutdown(context.WithoutCancel(ctx)) }()

		diag, err := observability.NewDiagnosticsServer(ctx, opts.diagnosticsAddr, export, a.providers.Tracer,
			func(context.Context) error { return ampas.SchemaReady() })
		if err != nil {
			return err
		}

		defer func() { _ = diag.Close(context.WithoutCancel(ctx)) }()

		a.providers.Logger.Info("diagnostics listening", "addr", diag.Addr())

		meter = export.Meter()
	}

	return serveMCP(ctx, a, meter)
}

func serveMCP(ctx context.Context, a *app, meter metric.Meter) error {
	metrics, err := observability.NewReadMetrics(meter)
	if err != nil {
		return err
	}

	reader, err := a.newReader("", metrics)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(mcp.ServerDeps{
		Reader:  reader,
		Logger:  a.providers.Logger,
		Tracer:  a.providers.Tracer,
		Version: version.Version,
	})
	if err != nil {
		return fmt.Errorf("create mcp server: %w", err)
	}

	a.providers.Logger.Info("mcp server starting", "tools", server.ListToolNames())

	return server.Run(ctx)
}
