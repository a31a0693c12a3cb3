package dto

import (
	"time"

	"github.com/spec-kit/care-access/internal/domain"
)

// SetApprovalRequest payload.
type SetApprovalRequest struct {
	Status string `json:"status"`
}

// ApprovalResponse describes an approval record.
type ApprovalResponse struct {
	Principal string                `json:"principal"`
	Status    domain.ApprovalStatus `json:"status"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// RegisterDoctorRequest payload.
type RegisterDoctorRequest struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

// DoctorResponse describes a doctor profile.
type DoctorResponse struct {
	Principal string    `json:"principal"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApprovalFromDomain maps an approval record.
func ApprovalFromDomain(r domain.ApprovalRecord) ApprovalResponse {
	return ApprovalResponse{Principal: r.Principal, Status: r.Status, UpdatedAt: r.UpdatedAt}
}

// ApprovalsFromDomain maps approval records.
func ApprovalsFromDomain(records []domain.ApprovalRecord) []ApprovalResponse {
	out := make([]ApprovalResponse, 0, len(records))
	for _, r := range records {
		out = append(out, ApprovalFromDomain(r))
	}
	return out
}

// DoctorFromDomain maps a doctor profile.
func DoctorFromDomain(d domain.DoctorProfile) DoctorResponse {
	return DoctorResponse{
		Principal: d.Principal,
		Name:      d.Name,
		Specialty: d.Specialty,
		Verified:  d.Verified,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// DoctorsFromDomain maps doctor profiles.
func DoctorsFromDomain(doctors []domain.DoctorProfile) []DoctorResponse {
	out := make([]DoctorResponse, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, DoctorFromDomain(d))
	}
	return out
}
