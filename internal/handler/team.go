package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mindwell/care-portal/internal/api"
	"github.com/mindwell/care-portal/internal/model"
	"github.com/mindwell/care-portal/internal/session"
)

// TeamHandler exposes the current organization's membership.  Routes are
// gated on the central role policy; the backend re-checks every call.
type TeamHandler struct {
	Sessions *session.Manager
	API      *api.Client
	Timeout  time.Duration
}

func NewTeamHandler(m *session.Manager, client *api.Client, timeout time.Duration) *TeamHandler {
	return &TeamHandler{Sessions: m, API: client, Timeout: timeout}
}

type inviteReq struct {
	Email     string     `json:"email"`
	FirstName string     `json:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty"`
	Role      model.Role `json:"role,omitempty"`
}

// orgID resolves the current user's organization, or 0 when they have
// none yet.
func (h *TeamHandler) orgID() int64 {
	user := h.Sessions.CurrentUser()
	if user == nil || user.OrganizationID == nil {
		return 0
	}
	return *user.OrganizationID
}

func (h *TeamHandler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), h.Timeout)
}

// Members lists the team of the user's organization.
func (h *TeamHandler) Members(c echo.Context) error {
	orgID := h.orgID()
	if orgID == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no organization"})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	members, err := h.API.Members(ctx, orgID)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": backendDetail(err, "member list failed")})
	}
	return c.JSON(http.StatusOK, echo.Map{"members": members})
}

// Invite sends an organization invitation to an email address.
func (h *TeamHandler) Invite(c echo.Context) error {
	orgID := h.orgID()
	if orgID == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no organization"})
	}
	var req inviteReq
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	err := h.API.InviteMember(ctx, orgID, api.InviteMemberData{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": backendDetail(err, "invitation failed")})
	}
	return c.NoContent(http.StatusAccepted)
}

// Remove detaches a member from the organization.
func (h *TeamHandler) Remove(c echo.Context) error {
	orgID := h.orgID()
	if orgID == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no organization"})
	}
	memberID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || memberID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member id"})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.API.RemoveMember(ctx, orgID, memberID); err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": backendDetail(err, "member removal failed")})
	}
	return c.NoContent(http.StatusNoContent)
}
