package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/sales-dashboard/internal/domain/dashboard/handler"
	"github.com/FACorreiaa/sales-dashboard/pkg/config"
)

func testDependencies(t *testing.T) *Dependencies {
	t.Helper()
	d := &Dependencies{
		Config: &config.Config{
			Server: config.ServerConfig{
				AllowedOrigins: []string{"http://dashboard.test"},
				RequestTimeout: 5 * time.Second,
			},
			Workbook: config.WorkbookConfig{
				DataDir:     t.TempDir(),
				BackData:    "backdata.xlsx",
				SalesReport: "report.xlsx",
				OpenTimeout: time.Second,
			},
			Cache:         config.CacheConfig{TTL: time.Minute},
			Observability: config.ObservabilityConfig{MetricsEnabled: true, MetricsPath: "/metrics"},
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	require.NoError(t, d.initStorage())
	require.NoError(t, d.initServices())
	require.NoError(t, d.initHandlers())
	t.Cleanup(d.Cleanup)
	return d
}

func TestRouter(t *testing.T) {
	r := NewRouter(testDependencies(t))

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","workbooks":0}`, rec.Body.String())
	})

	t.Run("health counts workbooks", func(t *testing.T) {
		d := testDependencies(t)
		require.NoError(t, os.WriteFile(filepath.Join(d.Config.Workbook.DataDir, "report.xlsx"), []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(d.Config.Workbook.DataDir, "~$report.xlsx"), []byte("lock"), 0o644))

		rec := httptest.NewRecorder()
		NewRouter(d).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","workbooks":1}`, rec.Body.String())
	})

	t.Run("health without a data directory", func(t *testing.T) {
		d := testDependencies(t)
		require.NoError(t, os.RemoveAll(d.Config.Workbook.DataDir))

		rec := httptest.NewRecorder()
		NewRouter(d).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":"unavailable","workbooks":0}`, rec.Body.String())
	})

	t.Run("missing workbook", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard/monthly", nil)
		req.Header.Set("Origin", "http://dashboard.test")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "http://dashboard.test", rec.Header().Get("Access-Control-Allow-Origin"))

		var body handler.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, handler.CodeSourceUnavailable, body.Error.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `sales_dashboard_http_requests_total{method="GET",route="/api/dashboard/monthly",status="503"} 1`)
	})
}
