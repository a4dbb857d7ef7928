package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes
	"strings"  // scopes are space separated

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireScope rejects requests whose token lacks every one of the given
// scopes.  The scope claim may hold several space-separated scopes.  It
// assumes JWTAuth already stored the claim under "scope".
func RequireScope(scopes ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(scopes))
	for _, s := range scopes {
		allowed[s] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claim, _ := c.Get(ctxScope).(string)
			for _, s := range strings.Fields(claim) {
				if allowed[s] {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
}
