package domain

import "time"

// ApprovalStatus captures the gate state for patient/doctor features.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ParseApprovalStatus validates a status value.
func ParseApprovalStatus(value string) (ApprovalStatus, error) {
	switch ApprovalStatus(value) {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return ApprovalStatus(value), nil
	default:
		return "", ErrInvalidInput
	}
}

// ApprovalRecord tracks approval for one principal.
type ApprovalRecord struct {
	Principal string
	Status    ApprovalStatus
	UpdatedAt time.Time
}

// DoctorProfile is created on doctor registration.
type DoctorProfile struct {
	Principal string
	Name      string
	Specialty string
	Verified  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
