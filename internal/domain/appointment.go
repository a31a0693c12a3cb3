package domain

import "time"

// AppointmentStatus enumerates appointment states.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// ParseAppointmentStatus validates a status value.
func ParseAppointmentStatus(value string) (AppointmentStatus, error) {
	switch AppointmentStatus(value) {
	case AppointmentPending, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled:
		return AppointmentStatus(value), nil
	default:
		return "", ErrInvalidInput
	}
}

// Appointment books a patient with a doctor for a time slot.
type Appointment struct {
	ID          int64
	Patient     string
	Doctor      string
	StartTime   time.Time
	EndTime     time.Time
	Description string
	Status      AppointmentStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
