package events

import (
	"time"

	"github.com/spec-kit/care-access/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRoleChanged       EventType = "role_changed"
	EventAdminExpired      EventType = "admin_expired"
	EventApprovalChanged   EventType = "approval_changed"
	EventDoctorVerified    EventType = "doctor_verified"
	EventDeviceReassigned  EventType = "device_reassigned"
	EventAppointmentStatus EventType = "appointment_status_overridden"
)

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RoleChangedPayload payload.
type RoleChangedPayload struct {
	Action    domain.AuditAction `json:"action"`
	OldRole   domain.Role        `json:"old_role"`
	NewRole   domain.Role        `json:"new_role"`
	ExpiresAt *time.Time         `json:"expires_at,omitempty"`
}

// AdminExpiredPayload payload.
type AdminExpiredPayload struct {
	ExpiredAt  time.Time   `json:"expired_at"`
	RevertedTo domain.Role `json:"reverted_to"`
}

// ApprovalChangedPayload payload.
type ApprovalChangedPayload struct {
	OldStatus *domain.ApprovalStatus `json:"old_status,omitempty"`
	NewStatus domain.ApprovalStatus  `json:"new_status"`
}

// DeviceReassignedPayload payload.
type DeviceReassignedPayload struct {
	DeviceID    string  `json:"device_id"`
	FromPatient *string `json:"from_patient,omitempty"`
	ToPatient   *string `json:"to_patient,omitempty"`
}

// AppointmentStatusPayload payload.
type AppointmentStatusPayload struct {
	AppointmentID int64                    `json:"appointment_id"`
	OldStatus     domain.AppointmentStatus `json:"old_status"`
	NewStatus     domain.AppointmentStatus `json:"new_status"`
}
