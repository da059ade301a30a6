package constants

import roles "hindtrade-backend/internal/pkg/constants"

// PermissionRoles maps each permission to roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewData:           {roles.Exporter, roles.Buyer, roles.CA, roles.CHA, roles.Admin},
	SubmitVerification: {roles.Exporter},
	ReviewVerification: {roles.CA, roles.Admin},
	ManageProducts:     {roles.Exporter},
	DeliverEnhancement: {roles.Admin},
	ManageProfiles:     {roles.Admin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	allowed, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
