package main

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floryn/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:           "test",
		AppPort:          ":0",
		DBDriver:         "sqlite",
		DBDSN:            fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", strings.ReplaceAll(t.Name(), "/", "_")),
		DBMaxOpenConns:   1,
		JWTSecret:        "test_jwt_secret",
		JWTTTL:           time.Hour,
		UploadDir:        t.TempDir(),
		OrderPricePolicy: config.PricePolicyClient,
		AuthRateLimit:    100,
		AuthRateBurst:    100,
		AdminEmail:       "admin@floryn.test",
		AdminPassword:    "admin123",
	}
}

func TestServerStartupAndHealthCheck(t *testing.T) {
	srv, err := newServer(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(srv.close)
	assert.Nil(t, srv.mq)

	t.Run("HealthCheck", func(t *testing.T) {
		resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"status":"healthy"`)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})

	t.Run("Metrics", func(t *testing.T) {
		resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "floryn_http_requests_total")
	})

	t.Run("BootstrapAdminCanLogin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"admin@floryn.test","password":"admin123"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := srv.app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"role":"admin"`)
	})

	t.Run("UnauthenticatedAccess", func(t *testing.T) {
		resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/api/products", nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, "catalog is public")

		resp, err = srv.app.Test(httptest.NewRequest(http.MethodGet, "/api/orders/my-orders", nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestNewServer_BadDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBDriver = "oracle"

	_, err := newServer(cfg)
	assert.Error(t, err)
}
