package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opendms/dms-platform/internal/api/middleware"
	"github.com/opendms/dms-platform/internal/core/authz"
)

// currentPrincipal extracts the principal installed by the auth
// middleware. A missing principal means the route was wired without
// the middleware; treat it as unauthenticated rather than trusting
// the request.
func currentPrincipal(c echo.Context) (authz.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return authz.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return p, nil
}
