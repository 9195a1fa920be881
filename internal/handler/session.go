package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mindwell/care-portal/internal/api"
	"github.com/mindwell/care-portal/internal/session"
)

// SessionHandler bundles the session manager and backend client behind
// the portal's auth endpoints.  It is the single writer of credentials:
// every path that stores a token pair also mirrors the access token into
// the route-gate cookie, and every teardown clears both, so the two
// channels can never drift apart.
type SessionHandler struct {
	Sessions *session.Manager
	API      *api.Client
	Cookie   string // access-token cookie name
	Timeout  time.Duration
}

func NewSessionHandler(m *session.Manager, client *api.Client, cookieName string, timeout time.Duration) *SessionHandler {
	return &SessionHandler{Sessions: m, API: client, Cookie: cookieName, Timeout: timeout}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerReq struct {
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Phone          *string `json:"phone,omitempty"`
	InvitationCode string  `json:"invitation_code,omitempty"`
}

type acceptInviteReq struct {
	Code string `json:"invitation_code"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r registerReq) data() api.RegisterData {
	return api.RegisterData{
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
	}
}

func (h *SessionHandler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), h.Timeout)
}

// Login authenticates against the backend and mirrors the access token
// into the gate cookie.  Pending-approval accounts get a distinct 403 so
// the form can explain the state instead of "wrong password".
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Sessions.Login(ctx, req.Email, req.Password); err != nil {
		if errors.Is(err, session.ErrApprovalPending) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
		}
		if api.IsAuthFailure(err) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": backendDetail(err, "login failed")})
	}

	h.syncCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"user": h.Sessions.CurrentUser()})
}

// Register creates a pending-approval account.  No session is established
// and no cookie is written, whatever the backend returns.
func (h *SessionHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing required fields"})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	user, err := h.Sessions.Register(ctx, req.data())
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": backendDetail(err, "registration failed")})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"user":    user,
		"message": "registration received, awaiting approval",
	})
}

// RegisterWithInvitation is the immediately-authenticated registration
// path, so it synchronizes the cookie exactly like Login.
func (h *SessionHandler) RegisterWithInvitation(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" || req.InvitationCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing required fields"})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Sessions.RegisterWithInvitation(ctx, req.data(), req.InvitationCode); err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": backendDetail(err, "registration failed")})
	}

	h.syncCookie(c)
	return c.JSON(http.StatusCreated, echo.Map{"user": h.Sessions.CurrentUser()})
}

// Logout tears the session down locally no matter what the backend says,
// and expires the gate cookie in the same response.
func (h *SessionHandler) Logout(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	h.Sessions.Logout(ctx)
	h.clearCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// Session exposes the manager state for pages: the user (nil while
// anonymous) and whether bootstrap is still in flight.
func (h *SessionHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user":    h.Sessions.CurrentUser(),
		"loading": h.Sessions.Loading(),
	})
}

// UpdateProfile forwards the change and resynchronizes the cached user.
func (h *SessionHandler) UpdateProfile(c echo.Context) error {
	var req api.UpdateProfileData
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.FirstName == "" || req.LastName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first/last name required"})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	user, err := h.API.UpdateProfile(ctx, req)
	if err != nil {
		if api.IsAuthFailure(err) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": backendDetail(err, "update failed")})
	}
	if err := h.Sessions.RefreshUser(ctx); err != nil {
		// The update itself succeeded; serve the backend's response and
		// let the next resynchronization catch up.
		return c.JSON(http.StatusOK, echo.Map{"user": user})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": h.Sessions.CurrentUser()})
}

// ChangePassword rotates the password for the current user.
func (h *SessionHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "current/new password required"})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	err := h.API.ChangePassword(ctx, api.ChangePasswordData{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		if api.IsAuthFailure(err) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "current password incorrect"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": backendDetail(err, "password change failed")})
	}
	return c.NoContent(http.StatusNoContent)
}

// AcceptInvite redeems an invitation for an already-authenticated user
// and refreshes the cached user, whose role and organization change.
func (h *SessionHandler) AcceptInvite(c echo.Context) error {
	var req acceptInviteReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invitation_code required"})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.API.AcceptInvite(ctx, strings.TrimSpace(req.Code)); err != nil {
		if api.IsAuthFailure(err) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": backendDetail(err, "invitation not accepted")})
	}
	_ = h.Sessions.RefreshUser(ctx)
	return c.NoContent(http.StatusNoContent)
}

// syncCookie mirrors the stored access token into the route-gate cookie.
func (h *SessionHandler) syncCookie(c echo.Context) {
	user := h.Sessions.CurrentUser()
	if user == nil {
		return
	}
	token := h.API.AccessToken()
	if token == "" {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     h.Cookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *SessionHandler) clearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.Cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// backendDetail prefers the backend's message, falling back to a generic
// one when there is none to show.
func backendDetail(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
