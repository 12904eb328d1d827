package domain

import "time"

// Role enumerates supported account roles.
type Role string

const (
	RoleDonor       Role = "donor"
	RoleInstitution Role = "institution"
	RoleAdmin       Role = "admin"
)

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleInstitution, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered account. Accounts are created once at
// registration and mutated only through profile updates.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// UserPatch carries the mutable profile fields. Nil means "leave as is".
type UserPatch struct {
	Name *string
	Role *Role
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Role == nil
}
