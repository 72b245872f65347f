package entity

import (
	"strings"
	"time"
)

// Role represents an authorization role
// Many-to-many with User via user_roles
type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	RoleAdmin      = "admin"
	RoleLibrarian  = "librarian"
	RoleSystemUser = "System User"
	RoleUser       = "User"
)

// IsPrivilegedRole reports whether name grants administrative routes and so
// may only be assigned by an administrator.
func IsPrivilegedRole(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), RoleAdmin)
}
