package constants

const (
	Exporter = "exporter"
	Buyer    = "buyer"
	CA       = "ca"
	CHA      = "cha"
	Admin    = "admin"
)

// ValidRoles is the set of allowed profile roles.
var ValidRoles = []string{Exporter, Buyer, CA, CHA, Admin}

// SelfServiceRoles can be chosen at sign-up; the rest are assigned by admins.
var SelfServiceRoles = []string{Exporter, Buyer}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	return contains(ValidRoles, role)
}

func IsSelfServiceRole(role string) bool {
	return contains(SelfServiceRoles, role)
}

func contains(list []string, v string) bool {
	for _, r := range list {
		if r == v {
			return true
		}
	}
	return false
}
