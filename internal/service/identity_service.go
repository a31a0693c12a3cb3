package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/events"
)

// Caller is an authenticated principal resolved against the profile store.
type Caller struct {
	Principal string
	Profile   *domain.UserProfile
	Role      domain.Role
}

// ProfileInput is the owner-editable part of a profile.
type ProfileInput struct {
	Name        string
	BaseRole    domain.Role
	MedicalRole string
}

// IdentityService maps principals to stored profiles.
type IdentityService struct {
	*core
}

// NewIdentityService constructs the service.
func NewIdentityService(deps Dependencies) *IdentityService {
	return &IdentityService{core: newCore(deps)}
}

// Resolve returns the caller's profile and current role. Principals without a
// profile resolve to a guest.
func (s *IdentityService) Resolve(ctx context.Context, principal string) (*Caller, error) {
	caller := &Caller{Principal: principal, Role: domain.RoleGuest}
	err := s.atomically(ctx, func(u *unit) error {
		profile, err := s.loadEffective(ctx, u, principal)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		caller.Profile = profile
		caller.Role = profile.Role
		return nil
	})
	if err != nil {
		return nil, err
	}
	return caller, nil
}

// GetCallerProfile returns the caller's own profile, or nil before the first save.
func (s *IdentityService) GetCallerProfile(ctx context.Context, principal string) (*domain.UserProfile, error) {
	caller, err := s.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}
	return caller.Profile, nil
}

// GetUserProfile returns another principal's profile to an admin.
func (s *IdentityService) GetUserProfile(ctx context.Context, principal, target string) (*domain.UserProfile, error) {
	var profile *domain.UserProfile
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RoleAdmin); err != nil {
			return err
		}
		p, err := s.loadEffective(ctx, u, target)
		if err != nil {
			return fmt.Errorf("profile %s: %w", target, err)
		}
		profile = p
		return nil
	})
	return profile, err
}

// SaveCallerProfile creates the caller's profile on first save. Later saves
// only change the name and medical role; role fields belong to the lifecycle
// manager.
func (s *IdentityService) SaveCallerProfile(ctx context.Context, principal string, input ProfileInput) (*domain.UserProfile, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	baseRole := input.BaseRole
	if baseRole == "" {
		baseRole = domain.RolePatient
	}
	if !baseRole.IsBase() {
		return nil, fmt.Errorf("%w: base role must be patient or doctor", domain.ErrInvalidRole)
	}

	var saved *domain.UserProfile
	err := s.atomically(ctx, func(u *unit) error {
		profile, err := s.loadEffective(ctx, u, principal)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			profile = &domain.UserProfile{
				Principal:   principal,
				Name:        name,
				BaseRole:    baseRole,
				Status:      domain.UserStatusActive,
				MedicalRole: strings.TrimSpace(input.MedicalRole),
				Role:        baseRole,
			}
			if err := u.createProfile(ctx, profile); err != nil {
				return err
			}
			u.emit(events.EventRoleChanged, principal, principal, events.RoleChangedPayload{
				OldRole: domain.RoleGuest,
				NewRole: baseRole,
			})
		case err != nil:
			return err
		default:
			profile.Name = name
			profile.MedicalRole = strings.TrimSpace(input.MedicalRole)
			if err := u.saveProfile(ctx, profile); err != nil {
				return err
			}
		}
		saved = profile
		return nil
	})
	return saved, err
}

// SeedSuperAdmins makes every listed principal a superAdmin. It runs at startup
// and is the only path to the superAdmin role.
func (s *IdentityService) SeedSuperAdmins(ctx context.Context, principals []string) error {
	for _, principal := range principals {
		principal := principal
		err := s.atomically(ctx, func(u *unit) error {
			profile, err := u.Profiles().Get(ctx, principal)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				profile = &domain.UserProfile{
					Principal: principal,
					Name:      principal,
					BaseRole:  domain.RolePatient,
					Status:    domain.UserStatusActive,
					Role:      domain.RoleSuperAdmin,
				}
				if err := u.createProfile(ctx, profile); err != nil {
					return err
				}
				return s.audit(ctx, u, domain.AuditAssignRole, domain.SystemPrincipal, ptr(principal), "seeded superAdmin from configuration")
			case err != nil:
				return err
			case profile.Role == domain.RoleSuperAdmin:
				return nil
			}
			old := profile.Role
			profile.Role = domain.RoleSuperAdmin
			profile.RoleExpiresAt = nil
			profile.PreviousRole = nil
			if err := u.saveProfile(ctx, profile); err != nil {
				return err
			}
			return s.audit(ctx, u, domain.AuditAssignRole, domain.SystemPrincipal, ptr(principal),
				fmt.Sprintf("seeded superAdmin from configuration; was %s", old))
		})
		if err != nil {
			return fmt.Errorf("seed superAdmin %s: %w", principal, err)
		}
		s.logger.Info("superAdmin seeded", zap.String("principal", principal))
	}
	return nil
}
