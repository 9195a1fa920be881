package api

import (
	"context"
	"net/http"

	"github.com/mindwell/care-portal/internal/model"
)

// RegisterData is the payload for both registration endpoints; the
// invitation variant adds the code.
type RegisterData struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone,omitempty"`
}

type registerWithInvitationData struct {
	RegisterData
	InvitationCode string `json:"invitation_code"`
}

type loginData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the token pair plus user returned by login and by
// invitation-registration.
type AuthResult struct {
	Credentials model.Credentials
	User        *model.User
}

type authResponse struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    *model.User `json:"user"`
}

// UpdateProfileData is the mutable subset of the user profile.
type UpdateProfileData struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone,omitempty"`
}

// ChangePasswordData carries a password rotation request.
type ChangePasswordData struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Register creates an account in the pending-approval state.  The backend
// returns no usable session: the created user is echoed back, but by
// contract the caller must not authenticate until an administrator
// approves the account.
func (c *Client) Register(ctx context.Context, data RegisterData) (*model.User, error) {
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/register", data, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// RegisterWithInvitation creates a pre-approved account from an invitation
// code and authenticates it immediately.
func (c *Client) RegisterWithInvitation(ctx context.Context, data RegisterData, code string) (*AuthResult, error) {
	payload := registerWithInvitationData{RegisterData: data, InvitationCode: code}
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/register-with-invitation", payload, &resp); err != nil {
		return nil, err
	}
	return &AuthResult{
		Credentials: model.Credentials{Access: resp.Access, Refresh: resp.Refresh},
		User:        resp.User,
	}, nil
}

// Login exchanges credentials for a token pair and the user.  Accounts
// still awaiting approval fail with an error IsApprovalPending recognizes.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/login", loginData{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &AuthResult{
		Credentials: model.Credentials{Access: resp.Access, Refresh: resp.Refresh},
		User:        resp.User,
	}, nil
}

// Me resolves the user behind the attached bearer token.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile rewrites the profile fields and returns the updated user.
func (c *Client) UpdateProfile(ctx context.Context, data UpdateProfileData) (*model.User, error) {
	var user model.User
	if err := c.doJSON(ctx, http.MethodPut, "/api/v1/auth/me", data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword rotates the password for the authenticated user.
func (c *Client) ChangePassword(ctx context.Context, data ChangePasswordData) error {
	return c.doJSON(ctx, http.MethodPost, "/api/v1/auth/change-password", data, nil)
}

// Logout asks the backend to invalidate the session.  Callers treat a
// failure here as non-fatal; local teardown proceeds regardless.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
}

// AcceptInvite redeems a pending invitation code for the authenticated
// user, joining them to the inviting organization.
func (c *Client) AcceptInvite(ctx context.Context, code string) error {
	payload := map[string]string{"invitation_code": code}
	return c.doJSON(ctx, http.MethodPost, "/api/v1/invites/accept", payload, nil)
}
