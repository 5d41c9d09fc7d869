package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/receiptsplit/internal/api"
	"github.com/mmynk/receiptsplit/internal/auth"
	"github.com/mmynk/receiptsplit/internal/config"
	"github.com/mmynk/receiptsplit/internal/metrics"
	"github.com/mmynk/receiptsplit/internal/ratelimit"
	"github.com/mmynk/receiptsplit/internal/service"
	"github.com/mmynk/receiptsplit/internal/storage/sqlite"
)

func newTestServer(t *testing.T, maxRequests int) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		FrontendURL:          "http://localhost:5173",
		SessionTTL:           time.Hour,
		RateLimitWindow:      time.Hour,
		RateLimitMaxRequests: maxRequests,
	}

	store, err := sqlite.New(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tokens, err := auth.NewTokenManager("test-secret", cfg.SessionTTL)
	require.NoError(t, err)

	m := metrics.New()
	svc := service.NewReceiptService(store, tokens, m, cfg.SessionTTL)
	limiter := ratelimit.New(cfg.RateLimitWindow, cfg.RateLimitMaxRequests)
	limiter.OnReject = func(string) { m.RateLimited.Inc() }

	srv := httptest.NewServer(newRouter(cfg, svc, tokens, m, limiter))
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, 10)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"message":"API is running"}`, string(body))
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestPreflight(t *testing.T) {
	srv := newTestServer(t, 10)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+api.ReceiptServiceDistributeProcedure, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestRateLimitAndMetrics(t *testing.T) {
	srv := newTestServer(t, 2)
	client := api.NewReceiptServiceClient(http.DefaultClient, srv.URL)

	for i := 0; i < 2; i++ {
		_, err := client.Distribute(context.Background(), connect.NewRequest(&api.DistributeRequest{Total: 1, Count: 2}))
		require.NoError(t, err)
	}
	_, err := client.Distribute(context.Background(), connect.NewRequest(&api.DistributeRequest{Total: 1, Count: 2}))
	assert.Equal(t, connect.CodeResourceExhausted, connect.CodeOf(err))

	// Health and metrics are not rate limited.
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "receiptsplit_rate_limited_total 1")
	assert.Contains(t, string(body), `receiptsplit_rpc_requests_total{code="ok",procedure="/receiptsplit.v1.ReceiptService/Distribute"} 2`)
}
