package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/events"
	"github.com/spec-kit/care-access/internal/repository"
)

// AccessGuard is the reusable enforcement point composed before privileged
// operations. The services call the unit-scoped variants so the check and the
// mutation it protects commit together.
type AccessGuard struct {
	*core
}

// NewAccessGuard builds a guard.
func NewAccessGuard(deps Dependencies) *AccessGuard {
	return &AccessGuard{core: newCore(deps)}
}

// RequireRole fails with domain.ErrUnauthorized when the caller's current,
// expiry-checked role ranks below min.
func (g *AccessGuard) RequireRole(ctx context.Context, principal string, min domain.Role) (domain.Role, error) {
	var role domain.Role
	err := g.atomically(ctx, func(u *unit) error {
		profile, err := g.requireRole(ctx, u, principal, min)
		if err != nil {
			return err
		}
		role = profile.Role
		return nil
	})
	return role, err
}

// RequireApproved fails with domain.ErrNotApproved unless the caller is approved.
func (g *AccessGuard) RequireApproved(ctx context.Context, principal string) error {
	return g.store.Read(ctx, func(repos repository.Repositories) error {
		return g.requireApproved(ctx, repos, principal)
	})
}

// loadEffective returns the stored profile with any due expiry applied.
func (c *core) loadEffective(ctx context.Context, u *unit, principal string) (*domain.UserProfile, error) {
	profile, err := u.Profiles().Get(ctx, principal)
	if err != nil {
		return nil, err
	}
	if _, err := c.expireIfDue(ctx, u, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// expireIfDue reverts a lapsed temporary admin grant and logs the reversion.
// Callers run inside a serialised unit, so a second reader sees the reverted
// row and does nothing.
func (c *core) expireIfDue(ctx context.Context, u *unit, p *domain.UserProfile) (bool, error) {
	if p.RoleExpiresAt == nil || p.RoleExpiresAt.After(u.now) {
		return false, nil
	}
	expiredAt := *p.RoleExpiresAt
	revertTo := p.FallbackRole()

	p.Role = revertTo
	p.RoleExpiresAt = nil
	p.PreviousRole = nil
	if err := u.saveProfile(ctx, p); err != nil {
		return false, fmt.Errorf("revert expired admin: %w", err)
	}

	metadata := fmt.Sprintf("temporary admin grant expired at %s; reverted to %s", expiredAt.Format(time.RFC3339), revertTo)
	if err := c.audit(ctx, u, domain.AuditAutoExpired, domain.SystemPrincipal, ptr(p.Principal), metadata); err != nil {
		return false, err
	}
	u.expired++
	u.emit(events.EventAdminExpired, p.Principal, domain.SystemPrincipal, events.AdminExpiredPayload{
		ExpiredAt:  expiredAt,
		RevertedTo: revertTo,
	})
	return true, nil
}

func (c *core) requireRole(ctx context.Context, u *unit, principal string, min domain.Role) (*domain.UserProfile, error) {
	profile, err := c.loadEffective(ctx, u, principal)
	if errors.Is(err, domain.ErrNotFound) {
		c.metrics.RecordAccessDenied("unauthorized")
		return nil, fmt.Errorf("%w: guest caller requires %s", domain.ErrUnauthorized, min)
	}
	if err != nil {
		return nil, err
	}
	if !profile.Role.AtLeast(min) {
		c.metrics.RecordAccessDenied("unauthorized")
		return nil, fmt.Errorf("%w: role %s requires %s", domain.ErrUnauthorized, profile.Role, min)
	}
	return profile, nil
}

func (c *core) requireApproved(ctx context.Context, repos repository.Repositories, principal string) error {
	approved, err := isApproved(ctx, repos, principal)
	if err != nil {
		return err
	}
	if !approved {
		c.metrics.RecordAccessDenied("not_approved")
		return fmt.Errorf("%w: approval required", domain.ErrNotApproved)
	}
	return nil
}

func isApproved(ctx context.Context, repos repository.Repositories, principal string) (bool, error) {
	record, err := repos.Approvals().Get(ctx, principal)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return record.Status == domain.ApprovalApproved, nil
}
