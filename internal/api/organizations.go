package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mindwell/care-portal/internal/model"
)

// OrganizationData is the payload for creating or updating an
// organization profile.
type OrganizationData struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Country     string `json:"country"`
	PostalCode  string `json:"postal_code,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Website     string `json:"website,omitempty"`
}

// InviteMemberData invites a person into an organization by email.  Name
// fields prefill the registration form they will see.
type InviteMemberData struct {
	Email     string     `json:"email"`
	FirstName string     `json:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty"`
	Role      model.Role `json:"role,omitempty"`
}

// Organizations lists the organizations the current user belongs to.
func (c *Client) Organizations(ctx context.Context) ([]model.Organization, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/v1/organizations", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Organization](data)
}

// Organization fetches one organization by id.
func (c *Client) Organization(ctx context.Context, id int64) (*model.Organization, error) {
	var org model.Organization
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v1/organizations/%d", id), nil, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// CreateOrganization registers a new organization; it starts unapproved.
func (c *Client) CreateOrganization(ctx context.Context, data OrganizationData) (*model.Organization, error) {
	var org model.Organization
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/organizations", data, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// UpdateOrganization rewrites the organization profile.
func (c *Client) UpdateOrganization(ctx context.Context, id int64, data OrganizationData) (*model.Organization, error) {
	var org model.Organization
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/v1/organizations/%d", id), data, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// DeleteOrganization removes an organization.  The backend restricts this
// to owners; the portal additionally hides the action from other roles.
func (c *Client) DeleteOrganization(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/organizations/%d", id), nil, nil)
}

// Members lists the membership of an organization.
func (c *Client) Members(ctx context.Context, orgID int64) ([]model.OrganizationMember, error) {
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/organizations/%d/members", orgID), nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.OrganizationMember](data)
}

// InviteMember creates a pending invitation for the given email.
func (c *Client) InviteMember(ctx context.Context, orgID int64, data InviteMemberData) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/v1/organizations/%d/invites", orgID), data, nil)
}

// RemoveMember detaches a member from the organization.
func (c *Client) RemoveMember(ctx context.Context, orgID, memberID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/organizations/%d/members/%d", orgID, memberID), nil, nil)
}
