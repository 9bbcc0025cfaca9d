package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAuthority gates a route on the prefixed authority strings
// advertised by the principal (e.g. "ROLE_SUPERADMIN"). This is the
// coarse, purely role-based gate; target-dependent decisions happen in
// the service layer through the permission matrix.
func RequireAuthority(allowed ...string) echo.MiddlewareFunc {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok || !p.Authenticated {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			for _, authority := range p.Authorities() {
				if _, permitted := set[authority]; permitted {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
	}
}
