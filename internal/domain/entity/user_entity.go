package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for an identity that can authenticate.
// Email is the identity key; Password holds a bcrypt hash.
type User struct {
	ID        string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Username  string
	UserType  string
	Enabled   bool
	Roles     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasRole reports whether the user carries role name.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// NormalizeEmail lower-cases and trims an identity so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
