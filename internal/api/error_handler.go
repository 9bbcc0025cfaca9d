package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/opendms/dms-platform/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Collapses every authentication failure into the same generic 401
//     so error shape cannot be used to probe accounts or rules.
//   - Keeps authorization denials distinct (403 with a safe reason).
//   - Logs unexpected errors internally without leaking details.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, middleware 401s).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	// Authentication failures: one generic message for all of them.
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusUnauthorized, "invalid credentials"

	// Authorization denials carry their reason.
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, err.Error()

	// Invariant violations.
	case errors.Is(err, domain.ErrSuperAdminExists):
		return http.StatusConflict, "SuperAdmin already exists"
	case errors.Is(err, domain.ErrSuperAdminImmortal):
		return http.StatusForbidden, "a SUPERADMIN account cannot be deleted"

	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrDepartmentNotFound):
		return http.StatusNotFound, "department not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrDepartmentExists):
		return http.StatusConflict, "department already exists"

	case errors.Is(err, domain.ErrUnknownRole),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidDepartment):
		return http.StatusBadRequest, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
