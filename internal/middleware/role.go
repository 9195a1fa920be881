package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mindwell/care-portal/internal/authz"
	"github.com/mindwell/care-portal/internal/session"
)

// RequireSession rejects requests while no user is authenticated.  A
// request arriving mid-bootstrap is rejected the same way: session state
// unknown means no authorization decision yet.
func RequireSession(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.Loading() || m.CurrentUser() == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
			}
			return next(c)
		}
	}
}

// RequireAction gates an endpoint on the central role policy.  This is a
// UX-layer check; the backend still enforces authorization on the actual
// API call.
func RequireAction(m *session.Manager, action authz.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := m.CurrentUser()
			if m.Loading() || user == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
			}
			if !authz.Can(user.Role, action) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
