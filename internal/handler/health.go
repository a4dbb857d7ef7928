package handler // declare the package name; contains HTTP handlers

import (
	"context"  // context bounds the readiness check
	"net/http" // net/http provides status codes and response helpers

	"github.com/labstack/echo/v4" // echo is the web framework used for this project

	"github.com/iliyamo/hirewire-superset/internal/health" // collaborator checks
)

// Health is a liveness endpoint for load balancers and orchestrators.  It
// returns a plain text "ok" with an HTTP 200 status code.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Readiness runs the collaborator checks.
type Readiness interface {
	Run(ctx context.Context) health.Report
}

// Ready runs the collaborator checks and answers 503 when any of them fails,
// so traffic is only routed once Superset's dependencies are reachable.
func Ready(p Readiness) echo.HandlerFunc {
	return func(c echo.Context) error {
		report := p.Run(c.Request().Context())
		status := http.StatusOK
		if !report.Healthy {
			status = http.StatusServiceUnavailable
		}
		return c.JSON(status, report)
	}
}
