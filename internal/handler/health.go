package handler // handler contains the portal's HTTP handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the liveness endpoint used by load balancers.  It answers
// regardless of session state and bypasses the route gate.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
