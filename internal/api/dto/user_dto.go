package dto

import (
	"time"

	"github.com/spec-kit/care-access/internal/domain"
)

// SaveProfileRequest payload for the caller's own profile.
type SaveProfileRequest struct {
	Name        string      `json:"name"`
	BaseRole    domain.Role `json:"base_role"`
	MedicalRole string      `json:"medical_role"`
}

// ProfileResponse describes a stored profile.
type ProfileResponse struct {
	Principal     string            `json:"principal"`
	Name          string            `json:"name"`
	BaseRole      domain.Role       `json:"base_role"`
	Status        domain.UserStatus `json:"status"`
	MedicalRole   string            `json:"medical_role"`
	Role          domain.Role       `json:"role"`
	PreviousRole  *domain.Role      `json:"previous_role,omitempty"`
	RoleExpiresAt *time.Time        `json:"role_expires_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// RoleInfoResponse is the caller's current role.
type RoleInfoResponse struct {
	Role      domain.Role `json:"role"`
	ExpiresAt *time.Time  `json:"expires_at"`
	IsExpired bool        `json:"is_expired"`
}

// AdminInfoResponse is one entry of the admin list.
type AdminInfoResponse struct {
	Principal string      `json:"principal"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	ExpiresAt *time.Time  `json:"expires_at"`
}

// AssignRoleRequest payload.
type AssignRoleRequest struct {
	Role string `json:"role"`
}

// AdminExpiryRequest payload for granting or extending temporary admin.
type AdminExpiryRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
}

// FlagResponse wraps boolean answers.
type FlagResponse struct {
	Value bool `json:"value"`
}

// ExpirationCheckResponse reports whether a lapsed grant was reverted.
type ExpirationCheckResponse struct {
	Reverted bool             `json:"reverted"`
	RoleInfo RoleInfoResponse `json:"role_info"`
}

// ProfileFromDomain maps a profile.
func ProfileFromDomain(p *domain.UserProfile) *ProfileResponse {
	if p == nil {
		return nil
	}
	return &ProfileResponse{
		Principal:     p.Principal,
		Name:          p.Name,
		BaseRole:      p.BaseRole,
		Status:        p.Status,
		MedicalRole:   p.MedicalRole,
		Role:          p.Role,
		PreviousRole:  p.PreviousRole,
		RoleExpiresAt: p.RoleExpiresAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// RoleInfoFromDomain maps a role record.
func RoleInfoFromDomain(info domain.RoleInfo) RoleInfoResponse {
	return RoleInfoResponse{Role: info.Role, ExpiresAt: info.ExpiresAt, IsExpired: info.IsExpired}
}

// AdminsFromDomain maps the admin list.
func AdminsFromDomain(admins []domain.AdminInfo) []AdminInfoResponse {
	out := make([]AdminInfoResponse, 0, len(admins))
	for _, a := range admins {
		out = append(out, AdminInfoResponse{Principal: a.Principal, Name: a.Name, Role: a.Role, ExpiresAt: a.ExpiresAt})
	}
	return out
}
