package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/events"
	"github.com/spec-kit/care-access/internal/repository"
)

// AppointmentInput books the caller with a doctor.
type AppointmentInput struct {
	Doctor      string
	StartTime   time.Time
	EndTime     time.Time
	Description string
}

// AppointmentService books appointments and lets admins override their status.
type AppointmentService struct {
	*core
}

// NewAppointmentService constructs the service.
func NewAppointmentService(deps Dependencies) *AppointmentService {
	return &AppointmentService{core: newCore(deps)}
}

// BookAppointment books the approved caller with a verified doctor.
func (s *AppointmentService) BookAppointment(ctx context.Context, principal string, input AppointmentInput) (*domain.Appointment, error) {
	if strings.TrimSpace(input.Doctor) == "" {
		return nil, fmt.Errorf("%w: doctor is required", domain.ErrInvalidInput)
	}
	if !input.StartTime.Before(input.EndTime) {
		return nil, fmt.Errorf("%w: start time must be before end time", domain.ErrInvalidInput)
	}
	if input.Doctor == principal {
		return nil, fmt.Errorf("%w: cannot book an appointment with yourself", domain.ErrInvalidInput)
	}

	var appt *domain.Appointment
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RolePatient); err != nil {
			return err
		}
		if err := s.requireApproved(ctx, u, principal); err != nil {
			return err
		}
		doctor, err := u.Doctors().Get(ctx, input.Doctor)
		if err != nil {
			return fmt.Errorf("doctor %s: %w", input.Doctor, err)
		}
		if !doctor.Verified {
			return fmt.Errorf("%w: doctor %s is not verified", domain.ErrNotApproved, input.Doctor)
		}

		appt = &domain.Appointment{
			Patient:     principal,
			Doctor:      input.Doctor,
			StartTime:   input.StartTime.UTC(),
			EndTime:     input.EndTime.UTC(),
			Description: strings.TrimSpace(input.Description),
			Status:      domain.AppointmentPending,
			CreatedAt:   u.now,
			UpdatedAt:   u.now,
		}
		return u.Appointments().Create(ctx, appt)
	})
	return appt, err
}

// ListAppointments returns every appointment to an admin and the caller's own
// appointments, as patient or doctor, to everyone else.
func (s *AppointmentService) ListAppointments(ctx context.Context, principal string) ([]domain.Appointment, error) {
	var appts []domain.Appointment
	err := s.atomically(ctx, func(u *unit) error {
		profile, err := s.loadEffective(ctx, u, principal)
		if errors.Is(err, domain.ErrNotFound) {
			appts = []domain.Appointment{}
			return nil
		}
		if err != nil {
			return err
		}
		var filter repository.AppointmentFilter
		switch {
		case profile.Role.AtLeast(domain.RoleAdmin):
		case profile.Role == domain.RoleDoctor:
			filter.Doctor = ptr(principal)
		default:
			filter.Patient = ptr(principal)
		}
		appts, err = u.Appointments().List(ctx, filter)
		return err
	})
	return appts, err
}

// OverrideAppointmentStatus sets an appointment's status. Admin only.
func (s *AppointmentService) OverrideAppointmentStatus(ctx context.Context, principal string, id int64, status domain.AppointmentStatus) (*domain.Appointment, error) {
	if _, err := domain.ParseAppointmentStatus(string(status)); err != nil {
		return nil, fmt.Errorf("%w: unknown appointment status %q", domain.ErrInvalidInput, status)
	}

	var appt *domain.Appointment
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RoleAdmin); err != nil {
			return err
		}
		current, err := u.Appointments().Get(ctx, id)
		if err != nil {
			return fmt.Errorf("appointment %d: %w", id, err)
		}
		old := current.Status
		appt, err = u.Appointments().UpdateStatus(ctx, id, status, u.now)
		if err != nil {
			return err
		}
		if err := s.audit(ctx, u, domain.AuditOverrideAppointment, principal, ptr(appt.Patient),
			fmt.Sprintf("appointment %d %s -> %s", id, old, status)); err != nil {
			return err
		}
		u.emit(events.EventAppointmentStatus, appt.Patient, principal, events.AppointmentStatusPayload{
			AppointmentID: id,
			OldStatus:     old,
			NewStatus:     status,
		})
		return nil
	})
	return appt, err
}
