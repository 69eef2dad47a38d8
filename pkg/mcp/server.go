// Package mcp exposes the spectral readers as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/specio/pkg/specio"
)

const (
	serverName = "specio"
	toolCount  = 3
)

// ServerDeps holds injectable dependencies. Zero-value fields use defaults.
type ServerDeps struct {
	// Reader parses tool input. Nil uses a Reader with default options.
	Reader *specio.Reader

	Logger *slog.Logger

	// Tracer creates one span per tool call. Nil disables tracing.
	Tracer trace.Tracer

	// Version is reported as the server implementation version.
	Version string
}

// Server wraps the MCP SDK server with the spectral tools registered.
type Server struct {
	inner  *mcpsdk.Server
	reader *specio.Reader
	tracer trace.Tracer

	mu    sync.RWMutex
	tools []string
}

// NewServer creates a server with every tool registered.
func NewServer(deps ServerDeps) (*Server, error) {
	reader := deps.Reader
	if reader == nil {
		var err error

		reader, err = specio.NewReader(specio.Options{Logger: deps.Logger})
		if err != nil {
			return nil, fmt.Errorf("create reader: %w", err)
		}
	}

	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	version := deps.Version
	if version == "" {
		version = "dev"
	}

	srv := &Server{
		inner:  mcpsdk.NewServer(&mcpsdk.Implementation{Name: serverName, Version: version}, opts),
		reader: reader,
		tracer: deps.Tracer,
		tools:  make([]string, 0, toolCount),
	}

	addTool(srv, ToolNameRead, readToolDescription, srv.handleRead)
	addTool(srv, ToolNameCheck, checkToolDescription, srv.handleCheck)
	addTool(srv, ToolNameResample, resampleToolDescription, srv.handleResample)

	return srv, nil
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(slices.Values(s.tools))
}

// Run serves on stdio until ctx is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport serves on transport until ctx is canceled or the
// connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

type toolHandler[In any] func(context.Context, *mcpsdk.CallToolRequest, In) (*mcpsdk.CallToolResult, ToolOutput, error)

func addTool[In any](s *Server, name, description string, handler toolHandler[In]) {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{Name: name, Description: description},
		mcpsdk.ToolHandlerFor[In, ToolOutput](withTracing(s.tracer, name, handler)))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

const (
	mcpSpanPrefix  = "mcp."
	traceIDMetaKey = "trace_id"
)

// withTracing wraps handler in a server span and, when the span is sampled,
// appends the trace ID to the result content.
func withTracing[In any](tracer trace.Tracer, toolName string, handler toolHandler[In]) toolHandler[In] {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input In) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		if err != nil || (result != nil && result.IsError) {
			span.SetStatus(codes.Error, "tool failed")
		}

		if sc := span.SpanContext(); sc.IsSampled() && result != nil {
			result.Content = append(result.Content,
				&mcpsdk.TextContent{Text: traceIDMetaKey + "=" + sc.TraceID().String()})
		}

		return result, output, err
	}
}
