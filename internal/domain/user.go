package domain

import "time"

// UserStatus represents lifecycle states for a portal user.
type UserStatus string

const UserStatusActive UserStatus = "active"

// UserProfile is the stored profile of a principal. The role fields double as
// the principal's single role record.
type UserProfile struct {
	Principal     string
	Name          string
	BaseRole      Role
	Status        UserStatus
	MedicalRole   string
	Role          Role
	PreviousRole  *Role
	RoleExpiresAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsTemporaryAdmin reports whether the profile holds a time-boxed admin grant.
func (p *UserProfile) IsTemporaryAdmin() bool {
	return p.Role == RoleAdmin && p.RoleExpiresAt != nil
}

// ExpiredAt reports whether a temporary grant has lapsed at the given instant.
func (p *UserProfile) ExpiredAt(now time.Time) bool {
	return p.RoleExpiresAt != nil && !p.RoleExpiresAt.After(now)
}

// FallbackRole is the role restored when an admin grant ends.
func (p *UserProfile) FallbackRole() Role {
	if p.PreviousRole != nil && p.PreviousRole.IsBase() {
		return *p.PreviousRole
	}
	return RolePatient
}

// RoleInfoAt projects the role record at the given instant.
func (p *UserProfile) RoleInfoAt(now time.Time) RoleInfo {
	info := RoleInfo{Role: p.Role, IsExpired: p.ExpiredAt(now)}
	if p.RoleExpiresAt != nil {
		exp := *p.RoleExpiresAt
		info.ExpiresAt = &exp
	}
	return info
}

// Clone returns a deep copy safe to hand across store boundaries.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	cp := *p
	if p.PreviousRole != nil {
		r := *p.PreviousRole
		cp.PreviousRole = &r
	}
	if p.RoleExpiresAt != nil {
		t := *p.RoleExpiresAt
		cp.RoleExpiresAt = &t
	}
	return &cp
}
