package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mindwell/care-portal/internal/authz"
	"github.com/mindwell/care-portal/internal/session"
)

// navItem is one entry in the portal navigation.
type navItem struct {
	Label  string       `json:"label"`
	Path   string       `json:"path"`
	Action authz.Action `json:"-"`
}

// navTemplate lists every navigation entry with the action that controls
// its visibility.  Filtering happens in one place, against authz.Can,
// instead of role comparisons scattered through pages.
var navTemplate = []navItem{
	{Label: "Dashboard", Path: "/dashboard", Action: authz.ViewDashboard},
	{Label: "Organization", Path: "/organization", Action: authz.ManageOrganization},
	{Label: "Programs", Path: "/programs", Action: authz.ManagePrograms},
	{Label: "Locations", Path: "/locations", Action: authz.ManageLocations},
	{Label: "Team", Path: "/team", Action: authz.ManageMembers},
}

// NavigationHandler returns the navigation entries the current user's
// role may see.
type NavigationHandler struct {
	Sessions *session.Manager
}

func NewNavigationHandler(m *session.Manager) *NavigationHandler {
	return &NavigationHandler{Sessions: m}
}

func (h *NavigationHandler) Navigation(c echo.Context) error {
	user := h.Sessions.CurrentUser()
	if user == nil {
		return c.JSON(http.StatusOK, echo.Map{"items": []navItem{}})
	}
	items := make([]navItem, 0, len(navTemplate))
	for _, item := range navTemplate {
		if authz.Can(user.Role, item.Action) {
			items = append(items, item)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
