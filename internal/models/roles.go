package models

// Role constants
const (
	RoleUser      = "user"
	RolePowerUser = "power_user"
	RoleAdmin     = "admin"
)

// ValidRoles is the whitelist of assignable roles
var ValidRoles = map[string]bool{
	RoleUser:      true,
	RolePowerUser: true,
	RoleAdmin:     true,
}

// IsValidRole checks if a role name is assignable
func IsValidRole(role string) bool {
	return ValidRoles[role]
}

// DashboardForRole returns the landing route the client should open after login
func DashboardForRole(role string) string {
	switch role {
	case RoleAdmin:
		return "/admin-dashboard"
	case RolePowerUser:
		return "/power-user-dashboard"
	default:
		return "/user-dashboard"
	}
}
