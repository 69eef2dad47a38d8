package observability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/specio/pkg/observability"
)

func newExportWithRead(t *testing.T) *observability.PrometheusExport {
	t.Helper()

	export, err := observability.NewPrometheusExport()
	require.NoError(t, err)

	t.Cleanup(func() { _ = export.Shutdown(context.Background()) })

	rm, err := observability.NewReadMetrics(export.Meter())
	require.NoError(t, err)

	rm.RecordRead(context.Background(), "cgats", observability.StatusOK, time.Millisecond, 36)

	return export
}

func TestPrometheusExportHandler(t *testing.T) {
	t.Parallel()

	export := newExportWithRead(t)

	rec := httptest.NewRecorder()
	export.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "target_info")
	assert.Contains(t, rec.Body.String(), "specio_reads")
}

func TestPrometheusExportWriteTextfile(t *testing.T) {
	t.Parallel()

	export := newExportWithRead(t)
	path := filepath.Join(t.TempDir(), "specio.prom")

	require.NoError(t, export.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "specio_samples")
	assert.Contains(t, string(data), `format="cgats"`)

	err = export.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	require.Error(t, err)
}
