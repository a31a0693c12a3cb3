package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/events"
	"github.com/spec-kit/care-access/internal/repository"
)

// ApprovalService gates patient and doctor features and owns doctor
// registration and verification.
type ApprovalService struct {
	*core
}

// NewApprovalService constructs the service.
func NewApprovalService(deps Dependencies) *ApprovalService {
	return &ApprovalService{core: newCore(deps)}
}

// DoctorInput registers the caller as a doctor.
type DoctorInput struct {
	Name      string
	Specialty string
}

// RequestApproval creates or resets the caller's approval to pending. Pending
// and approved records are left as they are. The caller needs a profile.
func (s *ApprovalService) RequestApproval(ctx context.Context, principal string) (*domain.ApprovalRecord, error) {
	var record *domain.ApprovalRecord
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := s.loadEffective(ctx, u, principal); err != nil {
			return fmt.Errorf("approval requester %s: %w", principal, err)
		}
		var err error
		record, err = s.requestPending(ctx, u, principal)
		return err
	})
	return record, err
}

// SetApproval moves target's approval to status. Anything other than approved
// withdraws doctor verification along with it.
func (s *ApprovalService) SetApproval(ctx context.Context, principal, target string, status domain.ApprovalStatus) (*domain.ApprovalRecord, error) {
	if _, err := domain.ParseApprovalStatus(string(status)); err != nil {
		return nil, fmt.Errorf("%w: unknown approval status %q", domain.ErrInvalidInput, status)
	}

	var record *domain.ApprovalRecord
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RoleAdmin); err != nil {
			return err
		}

		if _, err := u.Profiles().Get(ctx, target); err != nil {
			return fmt.Errorf("approval target %s: %w", target, err)
		}

		var old *domain.ApprovalStatus
		existing, err := u.Approvals().Get(ctx, target)
		switch {
		case err == nil:
			old = ptr(existing.Status)
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		record = &domain.ApprovalRecord{Principal: target, Status: status, UpdatedAt: u.now}
		if err := u.Approvals().Upsert(ctx, record); err != nil {
			return err
		}
		if status != domain.ApprovalApproved {
			if err := s.withdrawVerification(ctx, u, target); err != nil {
				return err
			}
		}

		from := "none"
		if old != nil {
			from = string(*old)
		}
		if err := s.audit(ctx, u, approvalAction(status), principal, ptr(target),
			fmt.Sprintf("%s -> %s", from, status)); err != nil {
			return err
		}
		u.emit(events.EventApprovalChanged, target, principal, events.ApprovalChangedPayload{
			OldStatus: old,
			NewStatus: status,
		})
		return nil
	})
	return record, err
}

// IsApproved reports the caller's approval. A missing record is not approved.
func (s *ApprovalService) IsApproved(ctx context.Context, principal string) (bool, error) {
	var approved bool
	err := s.store.Read(ctx, func(repos repository.Repositories) error {
		var err error
		approved, err = isApproved(ctx, repos, principal)
		return err
	})
	return approved, err
}

// ListApprovals returns every approval record to an admin.
func (s *ApprovalService) ListApprovals(ctx context.Context, principal string) ([]domain.ApprovalRecord, error) {
	var records []domain.ApprovalRecord
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RoleAdmin); err != nil {
			return err
		}
		var err error
		records, err = u.Approvals().List(ctx)
		return err
	})
	return records, err
}

// RegisterDoctor creates an unverified doctor profile for the caller, moves
// the caller's base role to doctor and files a pending approval.
func (s *ApprovalService) RegisterDoctor(ctx context.Context, principal string, input DoctorInput) (*domain.DoctorProfile, error) {
	name := strings.TrimSpace(input.Name)
	specialty := strings.TrimSpace(input.Specialty)
	if name == "" || specialty == "" {
		return nil, fmt.Errorf("%w: name and specialty are required", domain.ErrInvalidInput)
	}

	var doctor *domain.DoctorProfile
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := u.Doctors().Get(ctx, principal); err == nil {
			return fmt.Errorf("%w: %s is already registered as a doctor", domain.ErrConflict, principal)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		if err := s.becomeDoctor(ctx, u, principal, name); err != nil {
			return err
		}

		doctor = &domain.DoctorProfile{
			Principal: principal,
			Name:      name,
			Specialty: specialty,
			CreatedAt: u.now,
			UpdatedAt: u.now,
		}
		if err := u.Doctors().Create(ctx, doctor); err != nil {
			return err
		}
		_, err := s.requestPending(ctx, u, principal)
		return err
	})
	return doctor, err
}

// GetDoctorProfile returns a doctor profile.
func (s *ApprovalService) GetDoctorProfile(ctx context.Context, target string) (*domain.DoctorProfile, error) {
	var doctor *domain.DoctorProfile
	err := s.store.Read(ctx, func(repos repository.Repositories) error {
		var err error
		doctor, err = repos.Doctors().Get(ctx, target)
		if err != nil {
			return fmt.Errorf("doctor %s: %w", target, err)
		}
		return nil
	})
	return doctor, err
}

// ListDoctors returns every doctor profile to an admin.
func (s *ApprovalService) ListDoctors(ctx context.Context, principal string) ([]domain.DoctorProfile, error) {
	var doctors []domain.DoctorProfile
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RoleAdmin); err != nil {
			return err
		}
		var err error
		doctors, err = u.Doctors().List(ctx)
		return err
	})
	return doctors, err
}

// VerifyDoctor flags an approved doctor as verified. Verifying twice is a
// no-op and writes no second audit entry.
func (s *ApprovalService) VerifyDoctor(ctx context.Context, principal, target string) (*domain.DoctorProfile, error) {
	var doctor *domain.DoctorProfile
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RoleAdmin); err != nil {
			return err
		}
		approved, err := isApproved(ctx, u, target)
		if err != nil {
			return err
		}
		if !approved {
			return fmt.Errorf("%w: %s is not approved", domain.ErrNotApproved, target)
		}
		doctor, err = u.Doctors().Get(ctx, target)
		if err != nil {
			return fmt.Errorf("doctor %s: %w", target, err)
		}
		if doctor.Verified {
			return nil
		}

		doctor.Verified = true
		doctor.UpdatedAt = u.now
		if err := u.Doctors().Update(ctx, doctor); err != nil {
			return err
		}
		if err := s.audit(ctx, u, domain.AuditVerifyDoctor, principal, ptr(target),
			fmt.Sprintf("specialty %s", doctor.Specialty)); err != nil {
			return err
		}
		u.emit(events.EventDoctorVerified, target, principal, nil)
		return nil
	})
	return doctor, err
}

func (s *ApprovalService) requestPending(ctx context.Context, u *unit, principal string) (*domain.ApprovalRecord, error) {
	var old *domain.ApprovalStatus
	existing, err := u.Approvals().Get(ctx, principal)
	switch {
	case err == nil:
		if existing.Status != domain.ApprovalRejected {
			return existing, nil
		}
		old = ptr(existing.Status)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	record := &domain.ApprovalRecord{Principal: principal, Status: domain.ApprovalPending, UpdatedAt: u.now}
	if err := u.Approvals().Upsert(ctx, record); err != nil {
		return nil, err
	}
	u.emit(events.EventApprovalChanged, principal, principal, events.ApprovalChangedPayload{
		OldStatus: old,
		NewStatus: domain.ApprovalPending,
	})
	return record, nil
}

// becomeDoctor creates or updates the caller's profile with doctor as base
// role. A temporary admin reverts to doctor when the grant ends.
func (s *ApprovalService) becomeDoctor(ctx context.Context, u *unit, principal, name string) error {
	profile, err := s.loadEffective(ctx, u, principal)
	if errors.Is(err, domain.ErrNotFound) {
		profile = &domain.UserProfile{
			Principal: principal,
			Name:      name,
			BaseRole:  domain.RoleDoctor,
			Status:    domain.UserStatusActive,
			Role:      domain.RoleDoctor,
		}
		if err := u.createProfile(ctx, profile); err != nil {
			return err
		}
		u.emit(events.EventRoleChanged, principal, principal, events.RoleChangedPayload{
			OldRole: domain.RoleGuest,
			NewRole: domain.RoleDoctor,
		})
		return nil
	}
	if err != nil {
		return err
	}

	old := profile.Role
	profile.BaseRole = domain.RoleDoctor
	switch {
	case profile.Role.IsBase():
		profile.Role = domain.RoleDoctor
	case profile.PreviousRole != nil:
		profile.PreviousRole = ptr(domain.RoleDoctor)
	}
	if err := u.saveProfile(ctx, profile); err != nil {
		return err
	}
	if old != profile.Role {
		u.emit(events.EventRoleChanged, principal, principal, events.RoleChangedPayload{
			OldRole: old,
			NewRole: profile.Role,
		})
	}
	return nil
}

func (s *ApprovalService) withdrawVerification(ctx context.Context, u *unit, target string) error {
	doctor, err := u.Doctors().Get(ctx, target)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !doctor.Verified {
		return nil
	}
	doctor.Verified = false
	doctor.UpdatedAt = u.now
	return u.Doctors().Update(ctx, doctor)
}

func approvalAction(status domain.ApprovalStatus) domain.AuditAction {
	switch status {
	case domain.ApprovalApproved:
		return domain.AuditApproveUser
	case domain.ApprovalRejected:
		return domain.AuditRejectUser
	default:
		return domain.AuditResetApproval
	}
}
