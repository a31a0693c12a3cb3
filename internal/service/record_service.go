package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/repository"
)

// RecordService keeps patients' self-reported vitals and symptoms.
type RecordService struct {
	*core
}

// NewRecordService constructs the service.
func NewRecordService(deps Dependencies) *RecordService {
	return &RecordService{core: newCore(deps)}
}

// LogVitals appends a vitals sample to the approved caller's record. Guests
// without a profile are rejected.
func (s *RecordService) LogVitals(ctx context.Context, principal string, vitals domain.VitalSigns) (*domain.VitalSigns, error) {
	if err := validateVitals(vitals); err != nil {
		return nil, err
	}
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RolePatient); err != nil {
			return err
		}
		if err := s.requireApproved(ctx, u, principal); err != nil {
			return err
		}
		if vitals.Timestamp.IsZero() {
			vitals.Timestamp = u.now
		}
		return u.Records().AppendVitals(ctx, principal, vitals)
	})
	if err != nil {
		return nil, err
	}
	return &vitals, nil
}

// LogSymptom appends a symptom to the approved caller's record.
func (s *RecordService) LogSymptom(ctx context.Context, principal string, symptom domain.Symptom) (*domain.Symptom, error) {
	symptom.Description = strings.TrimSpace(symptom.Description)
	if symptom.Description == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}
	if symptom.Severity < 1 || symptom.Severity > 10 {
		return nil, fmt.Errorf("%w: severity must be between 1 and 10", domain.ErrInvalidInput)
	}
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RolePatient); err != nil {
			return err
		}
		if err := s.requireApproved(ctx, u, principal); err != nil {
			return err
		}
		if symptom.Timestamp.IsZero() {
			symptom.Timestamp = u.now
		}
		return u.Records().AppendSymptom(ctx, principal, symptom)
	})
	if err != nil {
		return nil, err
	}
	return &symptom, nil
}

// OwnRecords returns the caller's record without any guard.
func (s *RecordService) OwnRecords(ctx context.Context, principal string) (*domain.PatientRecord, error) {
	var record *domain.PatientRecord
	err := s.store.Read(ctx, func(repos repository.Repositories) error {
		var err error
		record, err = repos.Records().Get(ctx, principal)
		return err
	})
	return record, err
}

// RecordsByPatient returns a patient's record to an admin or a verified doctor.
func (s *RecordService) RecordsByPatient(ctx context.Context, principal, patient string) (*domain.PatientRecord, error) {
	var record *domain.PatientRecord
	err := s.atomically(ctx, func(u *unit) error {
		caller, err := s.requireRole(ctx, u, principal, domain.RolePatient)
		if err != nil {
			return err
		}
		if !caller.Role.AtLeast(domain.RoleAdmin) {
			if err := s.requireVerifiedDoctor(ctx, u, caller); err != nil {
				return err
			}
		}
		if _, err := u.Profiles().Get(ctx, patient); err != nil {
			return fmt.Errorf("patient %s: %w", patient, err)
		}
		record, err = u.Records().Get(ctx, patient)
		return err
	})
	return record, err
}

func (s *RecordService) requireVerifiedDoctor(ctx context.Context, u *unit, caller *domain.UserProfile) error {
	if caller.Role != domain.RoleDoctor {
		s.metrics.RecordAccessDenied("unauthorized")
		return fmt.Errorf("%w: role %s cannot read patient records", domain.ErrUnauthorized, caller.Role)
	}
	if err := s.requireApproved(ctx, u, caller.Principal); err != nil {
		return err
	}
	doctor, err := u.Doctors().Get(ctx, caller.Principal)
	if err != nil || !doctor.Verified {
		s.metrics.RecordAccessDenied("not_approved")
		return fmt.Errorf("%w: doctor %s is not verified", domain.ErrNotApproved, caller.Principal)
	}
	return nil
}

func validateVitals(v domain.VitalSigns) error {
	switch {
	case v.Temperature < 25 || v.Temperature > 45:
		return fmt.Errorf("%w: temperature out of range", domain.ErrInvalidInput)
	case v.OxygenSaturation < 0 || v.OxygenSaturation > 100:
		return fmt.Errorf("%w: oxygen saturation out of range", domain.ErrInvalidInput)
	case v.HeartRate <= 0 || v.HeartRate > 300:
		return fmt.Errorf("%w: heart rate out of range", domain.ErrInvalidInput)
	case strings.TrimSpace(v.BloodPressure) == "":
		return fmt.Errorf("%w: blood pressure is required", domain.ErrInvalidInput)
	}
	return nil
}
