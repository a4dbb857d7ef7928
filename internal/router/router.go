package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/hirewire-superset/internal/handler"    // handlers for health and config views
	"github.com/iliyamo/hirewire-superset/internal/middleware" // cache, rate limit and token middleware
	"github.com/iliyamo/hirewire-superset/internal/token"      // scope names
)

// Deps bundles what the routes need.  Cache and RateLimit may be
// pass-through middleware when Redis is unavailable.
type Deps struct {
	Config    *handler.ConfigHandler
	Readiness handler.Readiness
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
	Secret    string // SECRET_KEY used to verify bearer tokens
}

// RegisterRoutes registers the liveness and readiness endpoints.  They carry no
// middleware so orchestrators are never throttled.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(d.Readiness))
}

// RegisterConfig registers the /v1 configuration views.  Public views are
// rate limited and cached; the rendered module additionally requires a
// bearer token with the config:read scope and is never cached.
func RegisterConfig(e *echo.Echo, d Deps) {
	v1 := e.Group("/v1", d.RateLimit)

	v1.GET("/feature-flags", d.Config.FeatureFlags, d.Cache)
	v1.GET("/dashboard/refresh-intervals", d.Config.RefreshIntervals, d.Cache)
	v1.GET("/preferred-databases", d.Config.PreferredDatabases, d.Cache)
	v1.GET("/config", d.Config.Config, d.Cache)

	v1.GET("/superset_config.py", d.Config.PythonModule,
		middleware.JWTAuth(d.Secret),
		middleware.RequireScope(token.ScopeConfigRead),
	)
}
