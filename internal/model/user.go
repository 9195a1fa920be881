package model // package model defines the records exchanged with the backend API

// Role is the organization-level role attached to a user.  The set is
// closed: the backend never issues anything outside these three values,
// and an unknown role grants no capabilities on the client side.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User is the authenticated account as returned by GET /api/v1/auth/me.
// Role and OrganizationID are absent for accounts that have not yet
// joined an organization.
type User struct {
	ID             int64   `json:"id"`
	Email          string  `json:"email"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Phone          *string `json:"phone,omitempty"`
	Role           Role    `json:"role,omitempty"`
	OrganizationID *int64  `json:"organization_id,omitempty"`
}

// Credentials is the bearer token pair issued on login or
// invitation-registration.  Both strings are opaque to the portal; the
// backend alone knows their lifetimes.
type Credentials struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Empty reports whether no access token is present.  A pair with only a
// refresh token is treated as empty because nothing in the portal can
// exchange it.
func (c Credentials) Empty() bool {
	return c.Access == ""
}
