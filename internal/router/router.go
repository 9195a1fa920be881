package router // package router registers the portal's HTTP routes

import (
	"github.com/labstack/echo/v4"

	"github.com/mindwell/care-portal/internal/authz"
	"github.com/mindwell/care-portal/internal/config"
	"github.com/mindwell/care-portal/internal/handler"
	"github.com/mindwell/care-portal/internal/middleware"
	"github.com/mindwell/care-portal/internal/session"
)

// Register wires the route gate and every portal endpoint onto e.
//
// The gate runs first so page navigation is redirected before any handler
// executes; /portal, /api and /healthz are exempt inside the gate itself.
// Session-mutating endpoints live under /portal; endpoints that require
// an established session additionally run RequireSession.
func Register(e *echo.Echo, cfg config.Config, m *session.Manager, s *handler.SessionHandler, nav *handler.NavigationHandler, team *handler.TeamHandler) {
	e.Use(middleware.RequestID())
	e.Use(middleware.RouteGate(middleware.GateConfig{
		CookieName:    cfg.CookieName,
		Locales:       cfg.Locales,
		DefaultLocale: cfg.DefaultLocale,
	}))

	e.GET("/healthz", handler.Health)

	g := e.Group("/portal")
	g.POST("/login", s.Login)
	g.POST("/register", s.Register)
	g.POST("/register-with-invitation", s.RegisterWithInvitation)
	g.POST("/logout", s.Logout)
	g.GET("/session", s.Session)
	g.GET("/navigation", nav.Navigation)

	auth := g.Group("", middleware.RequireSession(m))
	auth.PUT("/profile", s.UpdateProfile)
	auth.POST("/change-password", s.ChangePassword)
	auth.POST("/invites/accept", s.AcceptInvite)

	auth.GET("/team", team.Members, middleware.RequireAction(m, authz.ManageMembers))
	auth.POST("/team/invites", team.Invite, middleware.RequireAction(m, authz.InviteMembers))
	auth.DELETE("/team/members/:id", team.Remove, middleware.RequireAction(m, authz.ManageMembers))
}
