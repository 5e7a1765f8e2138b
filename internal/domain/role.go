package domain

// Role tags a principal as a standard shopper or an administrator.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Admin permissions granted by default to seeded administrators.
var DefaultAdminPermissions = []string{"read", "create", "update", "delete", "manage_users"}
