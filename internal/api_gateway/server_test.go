package api_gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallet-ledger/internal/config"
	"github.com/wallet-ledger/internal/platform/metrics"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func testServer(t *testing.T, checks map[string]Pinger) *Server {
	t.Helper()
	cfg := &config.Config{
		Application: config.ApplicationConfig{Env: "test"},
		Server:      config.ServerConfig{Port: 0, ShutdownTimeout: time.Second},
		Metrics:     config.MetricsConfig{Path: "/metrics"},
	}
	return NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, Services{}, metrics.New(), checks)
}

func serve(s *Server, method, path, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rr
}

func TestHealth(t *testing.T) {
	up := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	t.Run("AllUp", func(t *testing.T) {
		rr := serve(testServer(t, map[string]Pinger{"postgres": up, "redis": up}), http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		var body struct {
			Status     string            `json:"status"`
			Components map[string]string `json:"components"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, map[string]string{"postgres": "up", "redis": "up"}, body.Components)
	})

	t.Run("Degraded", func(t *testing.T) {
		rr := serve(testServer(t, map[string]Pinger{"postgres": up, "mongodb": down}), http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Contains(t, rr.Body.String(), `"mongodb":"down"`)
		assert.Contains(t, rr.Body.String(), `"status":"degraded"`)
	})
}

func TestRouter(t *testing.T) {
	s := testServer(t, nil)

	rr := serve(s, http.MethodPost, "/api/v1/transactions", `{"type":"debit"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Correlation-ID"))

	rr = serve(s, http.MethodGet, "/api/v1/accounts/not-a-uuid/balance", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(s, http.MethodGet, "/api/v1/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `wallet_ledger_http_requests_total{code="400",method="POST",route="/api/v1/transactions"} 1`)
}

func TestServer_StopWithoutStart(t *testing.T) {
	assert.NoError(t, testServer(t, nil).Stop(context.Background()))
}
