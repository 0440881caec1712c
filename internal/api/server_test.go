package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/graphing-app/internal/api/resources"
	"github.com/tphakala/graphing-app/internal/conf"
	"github.com/tphakala/graphing-app/internal/datastore"
	"github.com/tphakala/graphing-app/internal/logger"
	"github.com/tphakala/graphing-app/internal/observability"
)

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	settings := &conf.Settings{Version: "1.2.3", BuildDate: "2026-01-02"}
	settings.Main.Name = "graphing-test"
	settings.WebServer.APIPrefix = "/api"
	settings.WebServer.BodyLimit = "1K"
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "api.db")
	settings.Telemetry.Metrics.Enabled = true
	settings.Telemetry.Metrics.Path = "/metrics"
	return settings
}

func openStore(t *testing.T, settings *conf.Settings, opts ...datastore.Option) datastore.Interface {
	t.Helper()
	opts = append([]datastore.Option{datastore.WithLogger(logger.Discard())}, opts...)
	store, err := datastore.New(settings, opts...)
	require.NoError(t, err)
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newServer(t *testing.T, settings *conf.Settings, opts ...ServerOption) *Server {
	t.Helper()
	opts = append([]ServerOption{WithDataStore(openStore(t, settings)), WithLogger(logger.Discard())}, opts...)
	s, err := New(settings, opts...)
	require.NoError(t, err)
	return s
}

func request(s *Server, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestNewRequiresDataStore(t *testing.T) {
	t.Parallel()
	_, err := New(testSettings(t))
	require.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()
	s := newServer(t, testSettings(t))

	rec := request(s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
	assert.Equal(t, "2026-01-02", body["build_date"])
	assert.Equal(t, "graphing-test", body["name"])
	assert.Contains(t, body, "uptime_seconds")
	assert.Equal(t, map[string]any{"backend": "sqlite", "status": "ok"}, body["database"])
}

func TestHealthCheckDegraded(t *testing.T) {
	t.Parallel()
	settings := testSettings(t)
	store, err := datastore.New(settings, datastore.WithLogger(logger.Discard()))
	require.NoError(t, err)
	require.NoError(t, store.Open())
	require.NoError(t, store.Close())

	s, err := New(settings, WithDataStore(store), WithLogger(logger.Discard()))
	require.NoError(t, err)

	rec := request(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"degraded"`)
	assert.Contains(t, rec.Body.String(), `"error":"unreachable"`)
	assert.NotContains(t, rec.Body.String(), "database is closed")
}

func TestTrailingSlashIsOptional(t *testing.T) {
	t.Parallel()
	s := newServer(t, testSettings(t))

	rec := request(s, http.MethodPost, "/api/dataset", `{"name":"D1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, target := range []string{"/api/dataset", "/api/dataset/", "/api/dataset/1", "/api/dataset/1/"} {
		assert.Equal(t, http.StatusOK, request(s, http.MethodGet, target, "").Code, target)
	}
	assert.Equal(t, http.StatusOK, request(s, http.MethodGet, "/api", "").Code)
}

func TestErrorCarriesRequestID(t *testing.T) {
	t.Parallel()
	s := newServer(t, testSettings(t))

	rec := request(s, http.MethodGet, "/api/sample/9/", "", echo.HeaderXRequestID, "req-123")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(echo.HeaderXRequestID))

	var resp resources.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "req-123", resp.CorrelationID)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	rec = request(s, http.MethodGet, "/api/sample/9/", "")
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID), "generated when absent")
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()
	s := newServer(t, testSettings(t))

	body := `{"name":"` + strings.Repeat("a", 2048) + `"}`
	rec := request(s, http.MethodPost, "/api/dataset/", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = request(s, http.MethodGet, "/api/dataset/", "")
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	s := newServer(t, testSettings(t))

	rec := request(s, http.MethodOptions, "/api/dataset/", "",
		echo.HeaderOrigin, "http://plots.example",
		echo.HeaderAccessControlRequestMethod, http.MethodPatch)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodPatch)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	m, err := observability.NewMetrics()
	require.NoError(t, err)
	settings := testSettings(t)
	store := openStore(t, settings, datastore.WithMetrics(m.Datastore))
	s, err := New(settings, WithDataStore(store), WithMetrics(m), WithLogger(logger.Discard()))
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, request(s, http.MethodGet, "/api/target/", "").Code)
	require.Equal(t, http.StatusNotFound, request(s, http.MethodGet, "/api/target/4/", "").Code)

	rec := request(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, `http_requests_total{method="GET",path="/api/target/",status_code="200"} 1`)
	assert.Contains(t, out, `http_requests_total{method="GET",path="/api/target/:id/",status_code="404"} 1`)
	assert.Contains(t, out, `datastore_db_operations_total{operation="find_all",status="success",table="targets"} 1`)
}

func TestRateLimit(t *testing.T) {
	t.Parallel()
	settings := testSettings(t)
	settings.WebServer.RateLimit.Enabled = true
	settings.WebServer.RateLimit.RequestsPerSecond = 0.001
	settings.WebServer.RateLimit.Burst = 1
	s := newServer(t, settings)

	assert.Equal(t, http.StatusOK, request(s, http.MethodGet, "/api/dataset/", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, request(s, http.MethodGet, "/api/dataset/", "").Code)
}

func TestRunAndShutdown(t *testing.T) {
	t.Parallel()
	settings := testSettings(t)
	settings.WebServer.Host = "127.0.0.1"
	settings.WebServer.ShutdownTimeout = 5 * time.Second
	s := newServer(t, settings)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return s.Addr() != nil }, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + s.Addr().String() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.Port = 70000 }, true},
		{"root prefix", func(c *Config) { c.APIPrefix = "/" }, true},
		{"relative prefix", func(c *Config) { c.APIPrefix = "api" }, true},
		{"bad body limit", func(c *Config) { c.BodyLimit = "lots" }, true},
		{"rate limit without burst", func(c *Config) { c.RateLimit = true; c.RequestsPerSec = 5 }, true},
		{"metrics under prefix", func(c *Config) { c.MetricsPath = "/api/metrics" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigFromSettings(t *testing.T) {
	t.Parallel()
	settings := testSettings(t)
	settings.WebServer.Port = 9000
	settings.WebServer.CORSOrigins = []string{"http://plots.example"}

	cfg := ConfigFromSettings(settings)
	assert.Equal(t, ":9000", cfg.Address())
	assert.Equal(t, []string{"http://plots.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "/metrics", cfg.MetricsPath)
	assert.Equal(t, DefaultReadTimeout, cfg.ReadTimeout)

	settings.Telemetry.Metrics.Enabled = false
	assert.Empty(t, ConfigFromSettings(settings).MetricsPath)
}
