package domain

import "time"

// Role enumerates the access levels a principal can hold.
type Role string

const (
	RoleGuest      Role = "guest"
	RolePatient    Role = "patient"
	RoleDoctor     Role = "doctor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superAdmin"
)

// ParseRole validates a role value coming from the outside world.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleGuest, RolePatient, RoleDoctor, RoleAdmin, RoleSuperAdmin:
		return Role(value), nil
	default:
		return "", ErrInvalidRole
	}
}

// Rank orders roles for guard checks. Patient and doctor share a rank.
func (r Role) Rank() int {
	switch r {
	case RolePatient, RoleDoctor:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether r satisfies min.
func (r Role) AtLeast(min Role) bool {
	return r.Rank() >= min.Rank()
}

// IsBase reports whether r is a non-privileged role a user can fall back to.
func (r Role) IsBase() bool {
	return r == RolePatient || r == RoleDoctor
}

// RoleInfo is the externally visible role record of a principal.
type RoleInfo struct {
	Role      Role
	ExpiresAt *time.Time
	IsExpired bool
}

// AdminInfo is a read projection used by admin management screens.
type AdminInfo struct {
	Principal string
	Name      string
	Role      Role
	ExpiresAt *time.Time
}
