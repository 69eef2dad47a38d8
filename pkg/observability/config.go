// Package observability wires OpenTelemetry tracing, read metrics and
// structured logging for the specio CLI and MCP server.
package observability

import "log/slog"

// AppMode identifies how the binary was launched.
type AppMode string

const (
	// ModeCLI is a one-shot command (inspect, check, diff).
	ModeCLI AppMode = "cli"
	// ModeMCP is the MCP stdio server.
	ModeMCP AppMode = "mcp"
)

const (
	defaultServiceName        = "specio"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string

	// Environment is the deployment environment ("production", "dev").
	Environment string

	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables export and makes every provider a no-op.
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	OTLPInsecure bool

	// DebugTrace samples every trace and logs attributes dropped by the filter.
	DebugTrace bool

	// SampleRatio is the root sampling ratio when DebugTrace is off.
	// Zero keeps every root span.
	SampleRatio float64

	LogLevel slog.Level
	LogJSON  bool

	// TraceVerbose keeps the per-phase decode and parse spans of every read.
	// Off by default, which leaves one span per file.
	TraceVerbose bool

	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
