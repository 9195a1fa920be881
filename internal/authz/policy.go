package authz // package authz centralizes role-based visibility decisions

import "github.com/mindwell/care-portal/internal/model"

// Action names something the portal UI can expose.  The table below is
// advisory: it decides what to show and where to redirect, while the
// backend remains the enforcing authority on every API call.
type Action string

const (
	ViewDashboard      Action = "view_dashboard"
	ManageOrganization Action = "manage_organization"
	DeleteOrganization Action = "delete_organization"
	ManageMembers      Action = "manage_members"
	InviteMembers      Action = "invite_members"
	ManagePrograms     Action = "manage_programs"
	ManageOfferings    Action = "manage_offerings"
	ManageLocations    Action = "manage_locations"
)

// grants is the single source of role policy.  Owners can do everything;
// admins everything except deleting the organization; members only view.
var grants = map[model.Role]map[Action]bool{
	model.RoleOwner: {
		ViewDashboard:      true,
		ManageOrganization: true,
		DeleteOrganization: true,
		ManageMembers:      true,
		InviteMembers:      true,
		ManagePrograms:     true,
		ManageOfferings:    true,
		ManageLocations:    true,
	},
	model.RoleAdmin: {
		ViewDashboard:      true,
		ManageOrganization: true,
		ManageMembers:      true,
		InviteMembers:      true,
		ManagePrograms:     true,
		ManageOfferings:    true,
		ManageLocations:    true,
	},
	model.RoleMember: {
		ViewDashboard: true,
	},
}

// Can reports whether a role may see the given action.  Unknown or empty
// roles (a user not yet attached to an organization) get nothing.
func Can(role model.Role, action Action) bool {
	return grants[role][action]
}
