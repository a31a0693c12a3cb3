package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/events"
)

// LifecycleService owns role assignment, admin elevation and expiry.
type LifecycleService struct {
	*core
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps Dependencies) *LifecycleService {
	return &LifecycleService{core: newCore(deps)}
}

// GetRoleInfo returns the caller's role, reverting a lapsed temporary grant
// first. Principals without a profile are guests.
func (s *LifecycleService) GetRoleInfo(ctx context.Context, principal string) (domain.RoleInfo, error) {
	info := domain.RoleInfo{Role: domain.RoleGuest}
	err := s.atomically(ctx, func(u *unit) error {
		profile, err := s.loadEffective(ctx, u, principal)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		info = profile.RoleInfoAt(u.now)
		return nil
	})
	return info, err
}

// CheckAdminExpiration runs the expiry check and reports whether it reverted
// the caller's role.
func (s *LifecycleService) CheckAdminExpiration(ctx context.Context, principal string) (bool, error) {
	var reverted bool
	err := s.atomically(ctx, func(u *unit) error {
		profile, err := u.Profiles().Get(ctx, principal)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		reverted, err = s.expireIfDue(ctx, u, profile)
		return err
	})
	return reverted, err
}

// IsCallerAdmin reports whether the caller currently holds admin or above.
func (s *LifecycleService) IsCallerAdmin(ctx context.Context, principal string) (bool, error) {
	info, err := s.GetRoleInfo(ctx, principal)
	if err != nil {
		return false, err
	}
	return info.Role.AtLeast(domain.RoleAdmin), nil
}

// IsActiveAdminSession reports whether target currently holds an unexpired
// admin role. Asking about someone else requires admin.
func (s *LifecycleService) IsActiveAdminSession(ctx context.Context, principal, target string) (bool, error) {
	var active bool
	err := s.atomically(ctx, func(u *unit) error {
		if principal != target {
			if _, err := s.requireRole(ctx, u, principal, domain.RoleAdmin); err != nil {
				return err
			}
		}
		profile, err := s.loadEffective(ctx, u, target)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		active = profile.Role.AtLeast(domain.RoleAdmin)
		return nil
	})
	return active, err
}

// AssignRole sets target's role. Admins may move users between base roles;
// granting admin or touching an existing admin needs a superAdmin.
func (s *LifecycleService) AssignRole(ctx context.Context, principal, target string, role domain.Role) error {
	return s.atomically(ctx, func(u *unit) error {
		caller, err := s.requireRole(ctx, u, principal, domain.RoleAdmin)
		if err != nil {
			return err
		}
		switch role {
		case domain.RolePatient, domain.RoleDoctor:
		case domain.RoleAdmin:
			if caller.Role != domain.RoleSuperAdmin {
				return fmt.Errorf("%w: only a superAdmin can assign admin", domain.ErrUnauthorized)
			}
		case domain.RoleSuperAdmin:
			return fmt.Errorf("%w: superAdmin cannot be assigned", domain.ErrUnauthorized)
		default:
			return fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
		}

		profile, err := s.loadTarget(ctx, u, target)
		if err != nil {
			return err
		}
		if profile.Role.AtLeast(domain.RoleAdmin) && caller.Role != domain.RoleSuperAdmin {
			return fmt.Errorf("%w: only a superAdmin can change an admin's role", domain.ErrUnauthorized)
		}

		old := profile.Role
		if role.IsBase() {
			profile.BaseRole = role
			profile.PreviousRole = nil
		} else {
			capturePreviousRole(profile)
		}
		profile.Role = role
		profile.RoleExpiresAt = nil
		if err := u.saveProfile(ctx, profile); err != nil {
			return err
		}
		return s.recordRoleChange(ctx, u, principal, profile, domain.AuditAssignRole, old,
			fmt.Sprintf("%s -> %s", old, role))
	})
}

// PromoteToAdmin makes target a permanent admin. A temporary grant keeps its
// recorded previous role and loses its expiry.
func (s *LifecycleService) PromoteToAdmin(ctx context.Context, principal, target string) error {
	return s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RoleSuperAdmin); err != nil {
			return err
		}
		profile, err := s.loadTarget(ctx, u, target)
		if err != nil {
			return err
		}

		old := profile.Role
		metadata := fmt.Sprintf("permanent admin; was %s", old)
		if profile.IsTemporaryAdmin() {
			metadata = fmt.Sprintf("permanent admin; temporary grant until %s cleared", profile.RoleExpiresAt.Format(time.RFC3339))
		}
		capturePreviousRole(profile)
		profile.Role = domain.RoleAdmin
		profile.RoleExpiresAt = nil
		if err := u.saveProfile(ctx, profile); err != nil {
			return err
		}
		return s.recordRoleChange(ctx, u, principal, profile, domain.AuditPromoteAdmin, old, metadata)
	})
}

// GrantTemporaryAdmin elevates target to admin until expiresAt. A permanent
// admin fails Conflict.
func (s *LifecycleService) GrantTemporaryAdmin(ctx context.Context, principal, target string, expiresAt time.Time) error {
	return s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RoleSuperAdmin); err != nil {
			return err
		}
		if !expiresAt.After(u.now) {
			return fmt.Errorf("%w: expiry %s is not in the future", domain.ErrInvalidExpiry, expiresAt.Format(time.RFC3339))
		}
		profile, err := s.loadTarget(ctx, u, target)
		if err != nil {
			return err
		}
		if profile.Role == domain.RoleAdmin && profile.RoleExpiresAt == nil {
			return fmt.Errorf("%w: %s is already a permanent admin", domain.ErrConflict, target)
		}

		old := profile.Role
		capturePreviousRole(profile)
		profile.Role = domain.RoleAdmin
		profile.RoleExpiresAt = ptr(expiresAt.UTC())
		if err := u.saveProfile(ctx, profile); err != nil {
			return err
		}
		return s.recordRoleChange(ctx, u, principal, profile, domain.AuditGrantAdmin, old,
			fmt.Sprintf("temporary admin until %s (%s)", expiresAt.UTC().Format(time.RFC3339), expiresAt.Sub(u.now).Round(time.Minute)))
	})
}

// ExtendAdminExpiry moves a temporary grant's expiry later. The recorded
// previous role is left untouched.
func (s *LifecycleService) ExtendAdminExpiry(ctx context.Context, principal, target string, newExpiresAt time.Time) error {
	return s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RoleSuperAdmin); err != nil {
			return err
		}
		profile, err := s.loadTarget(ctx, u, target)
		if err != nil {
			return err
		}
		if !profile.IsTemporaryAdmin() {
			return fmt.Errorf("%w: %s is %s", domain.ErrNotTemporaryAdmin, target, profile.Role)
		}
		current := *profile.RoleExpiresAt
		if !newExpiresAt.After(current) {
			return fmt.Errorf("%w: %s is not later than %s", domain.ErrInvalidExpiry,
				newExpiresAt.Format(time.RFC3339), current.Format(time.RFC3339))
		}

		profile.RoleExpiresAt = ptr(newExpiresAt.UTC())
		if err := u.saveProfile(ctx, profile); err != nil {
			return err
		}
		return s.recordRoleChange(ctx, u, principal, profile, domain.AuditExtendAdmin, profile.Role,
			fmt.Sprintf("expiry extended from %s to %s", current.Format(time.RFC3339), newExpiresAt.UTC().Format(time.RFC3339)))
	})
}

// RevokeAdmin reverts target to the role held before elevation.
func (s *LifecycleService) RevokeAdmin(ctx context.Context, principal, target string) error {
	return s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RoleSuperAdmin); err != nil {
			return err
		}
		profile, err := s.loadTarget(ctx, u, target)
		if err != nil {
			return err
		}
		if profile.Role != domain.RoleAdmin {
			return fmt.Errorf("%w: %s is %s", domain.ErrNotAdmin, target, profile.Role)
		}

		old := profile.Role
		revertTo := profile.FallbackRole()
		profile.Role = revertTo
		profile.RoleExpiresAt = nil
		profile.PreviousRole = nil
		if err := u.saveProfile(ctx, profile); err != nil {
			return err
		}
		return s.recordRoleChange(ctx, u, principal, profile, domain.AuditRevokeAdmin, old,
			fmt.Sprintf("reverted to %s", revertTo))
	})
}

// GetAllAdmins lists current admins and superAdmins. Lapsed grants found on
// the way are reverted and left out.
func (s *LifecycleService) GetAllAdmins(ctx context.Context, principal string) ([]domain.AdminInfo, error) {
	var admins []domain.AdminInfo
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RoleSuperAdmin); err != nil {
			return err
		}
		profiles, err := u.Profiles().ListByRoles(ctx, domain.RoleAdmin, domain.RoleSuperAdmin)
		if err != nil {
			return err
		}
		admins = make([]domain.AdminInfo, 0, len(profiles))
		for _, profile := range profiles {
			if _, err := s.expireIfDue(ctx, u, profile); err != nil {
				return err
			}
			if !profile.Role.AtLeast(domain.RoleAdmin) {
				continue
			}
			admins = append(admins, domain.AdminInfo{
				Principal: profile.Principal,
				Name:      profile.Name,
				Role:      profile.Role,
				ExpiresAt: profile.RoleExpiresAt,
			})
		}
		return nil
	})
	return admins, err
}

// RequestAdminAccess records the caller's request for elevation. A superAdmin
// acts on it through GrantTemporaryAdmin or PromoteToAdmin.
func (s *LifecycleService) RequestAdminAccess(ctx context.Context, principal string) error {
	return s.atomically(ctx, func(u *unit) error {
		profile, err := s.loadEffective(ctx, u, principal)
		if err != nil {
			return fmt.Errorf("profile %s: %w", principal, err)
		}
		if profile.Role.AtLeast(domain.RoleAdmin) {
			return fmt.Errorf("%w: caller is already %s", domain.ErrConflict, profile.Role)
		}
		return s.audit(ctx, u, domain.AuditRequestAdminAccess, principal, ptr(principal),
			fmt.Sprintf("current role %s", profile.Role))
	})
}

// loadTarget loads a lifecycle target. SuperAdmins are out of reach of every
// lifecycle operation.
func (s *LifecycleService) loadTarget(ctx context.Context, u *unit, target string) (*domain.UserProfile, error) {
	profile, err := s.loadEffective(ctx, u, target)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", target, err)
	}
	if profile.Role == domain.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: superAdmin %s cannot be modified", domain.ErrUnauthorized, target)
	}
	return profile, nil
}

func (s *LifecycleService) recordRoleChange(ctx context.Context, u *unit, actor string, profile *domain.UserProfile, action domain.AuditAction, old domain.Role, metadata string) error {
	if err := s.audit(ctx, u, action, actor, ptr(profile.Principal), metadata); err != nil {
		return err
	}
	u.emit(events.EventRoleChanged, profile.Principal, actor, events.RoleChangedPayload{
		Action:    action,
		OldRole:   old,
		NewRole:   profile.Role,
		ExpiresAt: profile.RoleExpiresAt,
	})
	return nil
}

// capturePreviousRole remembers the base role on the first elevation only.
func capturePreviousRole(p *domain.UserProfile) {
	if p.Role.IsBase() && p.PreviousRole == nil {
		p.PreviousRole = ptr(p.Role)
	}
}
