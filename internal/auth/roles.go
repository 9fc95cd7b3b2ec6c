package auth

// Admin role constants.
const (
	RoleViewer   = "viewer"
	RoleOperator = "operator"
)

// AllAdminRoles returns all valid admin roles.
func AllAdminRoles() []string {
	return []string{RoleViewer, RoleOperator}
}

// WriteRoles returns roles that can create games and push match updates.
func WriteRoles() []string {
	return []string{RoleOperator}
}

// ValidRole reports whether role is a known admin role.
func ValidRole(role string) bool {
	for _, r := range AllAdminRoles() {
		if r == role {
			return true
		}
	}
	return false
}
