package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-store/internal/errs"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

// getUserID extracts the authenticated user id placed in the context by the
// JWT middleware.  JWT numeric claims decode as float64; some clients send
// string subjects, so both are handled.
func getUserID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), nil
	case uint64:
		return v, nil
	case string:
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			return parsed, nil
		}
	}
	return 0, errs.ErrUnauthorized
}

// getSessionID extracts the anonymous cart session id placed in the context
// by the session middleware.  Empty when the request carries no session.
func getSessionID(c echo.Context) string {
	if v, ok := c.Get("session_id").(string); ok {
		return v
	}
	return ""
}

// respondErr translates sentinel errors into their HTTP status codes.
// Anything unrecognized is reported as a 500 without leaking details.
func respondErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, errs.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already exists"})
	case errors.Is(err, errs.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, errs.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	case errors.Is(err, errs.ErrBadRequest):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad request"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
