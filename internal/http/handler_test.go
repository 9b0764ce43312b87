package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redis-auth-proxy/internal/database"
	"redis-auth-proxy/internal/metrics"
)

func newTestHandler(t *testing.T, options Options) *Handler {
	t.Helper()

	repo, err := database.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	return NewHandler(repo, metrics.NewCollector(), options)
}

func TestLiveness(t *testing.T) {
	handler := newTestHandler(t, Options{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/up", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}

func TestReadinessUpstreamReachable(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireUserAuth("svc-user", "svc-pass")

	handler := newTestHandler(t, Options{
		UpstreamAddr:     mr.Addr(),
		UpstreamUsername: "svc-user",
		UpstreamPassword: "svc-pass",
	})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/ready", nil))

	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
}

func TestReadinessUpstreamDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	handler := newTestHandler(t, Options{UpstreamAddr: addr, UpstreamUsername: "default"})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
}

func TestMetricsExposition(t *testing.T) {
	handler := newTestHandler(t, Options{})
	handler.metrics.ConnectionOpened()

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "redis_proxy_active_connections 1")
}

func TestUnknownRoute(t *testing.T) {
	handler := newTestHandler(t, Options{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/nope", nil))

	require.Equal(t, http.StatusNotFound, recorder.Code)
}
