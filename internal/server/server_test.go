package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/metrics"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/services"
)

const testCSV = `Region,Date,Unemployment Rate,Labour Participation Rate
Assam,31-01-2020,4.7,45.0
Assam,29-02-2020,4.5,44.0
Goa,31-01-2020,8.0,35.0
`

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unemployment.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0o644))
	return NewServer(services.NewDashboard(nil, path, services.WithLogger(testLogger)), testLogger, opts...)
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t, WithMetrics(metrics.NewManager()))

	tests := []struct {
		method      string
		path        string
		status      int
		contentType string
	}{
		{http.MethodGet, "/", http.StatusOK, "text/html"},
		{http.MethodGet, "/health", http.StatusOK, "application/json"},
		{http.MethodGet, "/admin/stats", http.StatusOK, "application/json"},
		{http.MethodPost, "/admin/reload", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/regions", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/view?region=Goa", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/summary?region=Goa", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/compare?region=Goa&compare=Assam", http.StatusOK, "application/json"},
		{http.MethodGet, "/sse/dashboard", http.StatusOK, "text/event-stream"},
		{http.MethodGet, "/download/csv", http.StatusOK, "text/csv"},
		{http.MethodGet, "/download/xlsx", http.StatusOK, "application/vnd.openxmlformats"},
		{http.MethodGet, "/charts/trend.png", http.StatusOK, "image/png"},
		{http.MethodGet, "/charts/compare.png?compare=Goa", http.StatusOK, "image/png"},
		{http.MethodGet, "/metrics", http.StatusOK, "text/plain"},
		{http.MethodGet, "/nonexistent", http.StatusNotFound, ""},
		{http.MethodPost, "/api/view", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.contentType != "" {
				assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), tt.contentType),
					"content type %q", w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_AdminToken(t *testing.T) {
	srv := newTestServer(t, WithAdminToken("s3cret"))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "Bearer nope", http.StatusUnauthorized},
		{"not bearer", "s3cret", http.StatusUnauthorized},
		{"valid", "Bearer s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code, "public routes stay open")
}

func TestServer_RecordsRouteMetrics(t *testing.T) {
	m := metrics.NewManager()
	srv := newTestServer(t, WithMetrics(m))

	for _, path := range []string{"/api/view?region=Goa", "/api/view?region=Assam", "/missing"} {
		srv.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `unemployment_dashboard_http_requests_total{method="GET",route="GET /api/view",status_code="200"} 2`)
	assert.Contains(t, body, `route="unmatched",status_code="404"`)
}
