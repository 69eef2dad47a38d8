package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusExport is a MeterProvider whose instruments are collected into a
// private Prometheus registry. The CLI uses it to dump batch metrics to a
// node-exporter textfile; the MCP server scrapes it over /metrics.
type PrometheusExport struct {
	registry *prometheus.Registry
	provider *sdkmetric.MeterProvider
}

// NewPrometheusExport creates an export with its own registry, so several
// exports in one process never collide.
func NewPrometheusExport() (*PrometheusExport, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &PrometheusExport{
		registry: registry,
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)),
	}, nil
}

// Meter returns the specio meter backed by this export.
func (p *PrometheusExport) Meter() metric.Meter {
	return p.provider.Meter(MeterName)
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusExport) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the current metric values to path in the textfile
// collector format. The file is replaced atomically.
func (p *PrometheusExport) WriteTextfile(path string) error {
	err := prometheus.WriteToTextfile(path, p.registry)
	if err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}

	return nil
}

// Shutdown stops the underlying MeterProvider.
func (p *PrometheusExport) Shutdown(ctx context.Context) error {
	err := p.provider.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown prometheus export: %w", err)
	}

	return nil
}
