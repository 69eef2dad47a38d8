package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

// DiagnosticsServer serves /healthz, /readyz and /metrics next to the MCP
// stdio server.
type DiagnosticsServer struct {
	server   *http.Server
	listener net.Listener
}

// NewDiagnosticsServer starts listening on addr. Metrics come from export;
// every request gets a server span from tracer.
func NewDiagnosticsServer(
	ctx context.Context, addr string, export *PrometheusExport, tracer trace.Tracer, checks ...ReadyCheck,
) (*DiagnosticsServer, error) {
	mux := http.NewServeMux()

	mux.Handle("/healthz", HealthHandler())
	mux.Handle("/readyz", ReadyHandler(checks...))
	mux.Handle("/metrics", export.Handler())

	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           HTTPMiddleware(tracer, mux),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		serveErr := srv.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Warn("diagnostics server stopped", "error", serveErr)
		}
	}()

	return &DiagnosticsServer{server: srv, listener: listener}, nil
}

// Addr returns the address the server is listening on.
func (d *DiagnosticsServer) Addr() string {
	return d.listener.Addr().String()
}

// Close gracefully shuts the server down.
func (d *DiagnosticsServer) Close(ctx context.Context) error {
	err := d.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown diagnostics server: %w", err)
	}

	return nil
}
