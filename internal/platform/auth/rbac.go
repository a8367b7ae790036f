package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/medibook/medibook/internal/platform/httperr"
)

// RequireRole returns middleware that admits the request only when the
// resolved identity's role is in the allowed set.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident := IdentityFromContext(c.Request().Context())
			if ident == nil {
				return httperr.ToHTTP(httperr.Unauthenticatedf("missing authorization header"))
			}
			for _, required := range roles {
				if ident.Role == required {
					return next(c)
				}
			}
			return httperr.ToHTTP(httperr.Forbiddenf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}
