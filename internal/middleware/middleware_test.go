package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hirewire-superset/internal/config"
	"github.com/iliyamo/hirewire-superset/internal/token"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func do(e *echo.Echo, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRedisCacheHitAndMiss(t *testing.T) {
	_, rdb := setupRedis(t)
	cfg, err := config.LoadResponseCacheConfig(map[string]string{})
	require.NoError(t, err)

	var calls atomic.Int32
	e := echo.New()
	e.Use(NewRedisCache(cfg, rdb))
	e.GET("/v1/feature-flags", func(c echo.Context) error {
		calls.Add(1)
		c.Response().Header().Set("X-Custom", "yes")
		return c.JSON(http.StatusOK, echo.Map{"DASHBOARD_RBAC": true})
	})

	first := do(e, http.MethodGet, "/v1/feature-flags", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := do(e, http.MethodGet, "/v1/feature-flags", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "yes", second.Header().Get("X-Custom"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), calls.Load())

	// A different query string is a different key under route_query.
	third := do(e, http.MethodGet, "/v1/feature-flags?x=1", nil)
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestRedisCacheSkipsAuthorizedAndErrors(t *testing.T) {
	_, rdb := setupRedis(t)
	cfg, err := config.LoadResponseCacheConfig(map[string]string{})
	require.NoError(t, err)

	var calls atomic.Int32
	e := echo.New()
	e.Use(NewRedisCache(cfg, rdb))
	e.GET("/private", func(c echo.Context) error {
		calls.Add(1)
		return c.String(http.StatusOK, "secret")
	})
	e.GET("/broken", func(c echo.Context) error {
		calls.Add(1)
		return c.String(http.StatusServiceUnavailable, "down")
	})

	for i := 0; i < 2; i++ {
		rec := do(e, http.MethodGet, "/private", map[string]string{"Authorization": "Bearer x"})
		assert.Empty(t, rec.Header().Get("X-Cache"))
		do(e, http.MethodGet, "/broken", nil)
	}
	assert.Equal(t, int32(4), calls.Load())
}

func TestRedisCacheDisabledPassesThrough(t *testing.T) {
	cfg := config.ResponseCacheConfig{Enabled: true}
	e := echo.New()
	e.Use(NewRedisCache(cfg, nil))
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := do(e, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestTokenBucketThrottles(t *testing.T) {
	_, rdb := setupRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "test:rl",
	}

	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb))
	e.GET("/v1/config", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	for i := 0; i < 2; i++ {
		rec := do(e, http.MethodGet, "/v1/config", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}
	rec := do(e, http.MethodGet, "/v1/config", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestTokenBucketFailsOpen(t *testing.T) {
	mr, rdb := setupRedis(t)
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}
	mr.Close()

	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb))
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/", nil).Code)
	}
}

func TestJWTAuthAndScope(t *testing.T) {
	const secret = "superset-secret"
	e := echo.New()
	g := e.Group("", JWTAuth(secret), RequireScope(token.ScopeConfigRead))
	g.GET("/v1/superset_config.py", func(c echo.Context) error {
		return c.String(http.StatusOK, subject(c))
	})

	rec := do(e, http.MethodGet, "/v1/superset_config.py", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodGet, "/v1/superset_config.py", map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	wrongKey, err := token.NewAccessToken("other", "ops", token.ScopeConfigRead, time.Minute)
	require.NoError(t, err)
	rec = do(e, http.MethodGet, "/v1/superset_config.py", map[string]string{"Authorization": "Bearer " + wrongKey.Token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	noScope, err := token.NewAccessToken(secret, "ops", "dashboards:read", time.Minute)
	require.NoError(t, err)
	rec = do(e, http.MethodGet, "/v1/superset_config.py", map[string]string{"Authorization": "Bearer " + noScope.Token})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	good, err := token.NewAccessToken(secret, "ops", "dashboards:read "+token.ScopeConfigRead, time.Minute)
	require.NoError(t, err)
	rec = do(e, http.MethodGet, "/v1/superset_config.py", map[string]string{"Authorization": "Bearer " + good.Token})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ops", rec.Body.String())
}
