package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers a plain 200 so load balancers and uptime checks can see
// the process is alive.  It deliberately skips the database: a degraded
// dependency should not take the whole instance out of rotation.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
