package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hirewire-superset/internal/config"
	"github.com/iliyamo/hirewire-superset/internal/handler"
	"github.com/iliyamo/hirewire-superset/internal/health"
	"github.com/iliyamo/hirewire-superset/internal/middleware"
	"github.com/iliyamo/hirewire-superset/internal/token"
)

type stubReadiness struct{ report health.Report }

func (s stubReadiness) Run(context.Context) health.Report { return s.report }

func newServer(t *testing.T, readiness handler.Readiness) (*echo.Echo, config.Settings) {
	t.Helper()
	s, err := config.LoadFrom(map[string]string{
		"SUPERSET_SECRET_KEY": "router-secret",
		"SMTP_PASSWORD":       "pw",
	})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cacheCfg, err := config.LoadResponseCacheConfig(map[string]string{})
	require.NoError(t, err)
	rlCfg, err := config.LoadRateLimitConfig(map[string]string{})
	require.NoError(t, err)

	e := echo.New()
	d := Deps{
		Config:    handler.NewConfigHandler(s),
		Readiness: readiness,
		Cache:     middleware.NewRedisCache(cacheCfg, rdb),
		RateLimit: middleware.NewTokenBucket(rlCfg, rdb),
		Secret:    s.SecretKey,
	}
	RegisterRoutes(e, d)
	RegisterConfig(e, d)
	return e, s
}

func get(e *echo.Echo, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReady(t *testing.T) {
	e, _ := newServer(t, stubReadiness{health.Report{Healthy: true}})
	rec := get(e, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, http.StatusOK, get(e, "/readyz", "").Code)

	down, _ := newServer(t, stubReadiness{health.Report{Healthy: false, Checks: []health.Result{{Name: "cache_redis", Status: health.StatusFailed}}}})
	rec = get(down, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "cache_redis")
}

func TestFeatureFlagsRoute(t *testing.T) {
	e, _ := newServer(t, stubReadiness{})
	rec := get(e, "/v1/feature-flags", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var flags map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flags))
	assert.Len(t, flags, 7)
	assert.False(t, flags["ESTIMATED_QUERY_COST"])
	assert.True(t, flags["EMBEDDABLE_CHARTS"])

	assert.Equal(t, "HIT", get(e, "/v1/feature-flags", "").Header().Get("X-Cache"))
}

func TestRefreshIntervalsRoute(t *testing.T) {
	e, _ := newServer(t, stubReadiness{})
	rec := get(e, "/v1/dashboard/refresh-intervals", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Mode      string `json:"mode"`
		Intervals []struct {
			Seconds int    `json:"seconds"`
			Label   string `json:"label"`
		} `json:"intervals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "fetch", body.Mode)
	require.Len(t, body.Intervals, 7)
	assert.Equal(t, 0, body.Intervals[0].Seconds)
	assert.Equal(t, "Don't refresh", body.Intervals[0].Label)
	assert.Equal(t, 3600, body.Intervals[6].Seconds)
}

func TestPreferredDatabasesRoute(t *testing.T) {
	e, _ := newServer(t, stubReadiness{})
	rec := get(e, "/v1/preferred-databases", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sqlalchemy_uri_placeholder":"duckdb:////app/duckdb-data/hirewire.duckdb"`)
}

func TestConfigRouteMasksSecrets(t *testing.T) {
	e, _ := newServer(t, stubReadiness{})

	rec := get(e, "/v1/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "router-secret")
	assert.Contains(t, rec.Body.String(), `"SECRET_KEY": "***"`)

	rec = get(e, "/v1/config?format=yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/yaml"))
	assert.Contains(t, rec.Body.String(), "REDIS_HOST: redis")

	assert.Equal(t, http.StatusBadRequest, get(e, "/v1/config?format=xml", "").Code)
}

func TestPythonModuleRequiresToken(t *testing.T) {
	e, s := newServer(t, stubReadiness{})

	assert.Equal(t, http.StatusUnauthorized, get(e, "/v1/superset_config.py", "").Code)

	tok, err := token.NewAccessToken(s.SecretKey, "deployer", token.ScopeConfigRead, time.Minute)
	require.NoError(t, err)
	rec := get(e, "/v1/superset_config.py", tok.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), `SECRET_KEY = "router-secret"`)
	assert.Contains(t, rec.Body.String(), `SMTP_PASSWORD = "pw"`)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
