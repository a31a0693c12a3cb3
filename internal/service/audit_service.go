package service

import (
	"context"
	"fmt"

	"github.com/spec-kit/care-access/internal/domain"
)

const defaultAuditPageSize = 50

// AuditQuery selects one page of the audit trail.
type AuditQuery struct {
	Offset     int
	Limit      int
	Action     *domain.AuditAction
	TargetUser *string
}

// AuditPage is a page of entries, newest first, with the filtered total.
type AuditPage struct {
	Entries []domain.AuditLogEntry
	Total   int64
	Offset  int
	Limit   int
}

// AuditService serves the audit trail to superAdmins. Entries are appended by
// the other services inside their own units of work.
type AuditService struct {
	*core
	maxPageSize int
}

// NewAuditService constructs the service. maxPageSize caps the page limit.
func NewAuditService(deps Dependencies, maxPageSize int) *AuditService {
	if maxPageSize <= 0 {
		maxPageSize = 200
	}
	return &AuditService{core: newCore(deps), maxPageSize: maxPageSize}
}

// Query returns one page of the audit trail ordered by insertion, newest first.
func (s *AuditService) Query(ctx context.Context, principal string, q AuditQuery) (*AuditPage, error) {
	if q.Offset < 0 || q.Limit < 0 {
		return nil, fmt.Errorf("%w: offset and limit must not be negative", domain.ErrInvalidInput)
	}
	if q.Limit == 0 {
		q.Limit = defaultAuditPageSize
	}
	if q.Limit > s.maxPageSize {
		q.Limit = s.maxPageSize
	}
	filter := domain.AuditFilter{Action: q.Action, TargetUser: q.TargetUser}

	page := &AuditPage{Offset: q.Offset, Limit: q.Limit}
	err := s.atomically(ctx, func(u *unit) error {
		if _, err := s.requireRole(ctx, u, principal, domain.RoleSuperAdmin); err != nil {
			return err
		}
		entries, err := u.AuditLogs().List(ctx, filter, q.Offset, q.Limit)
		if err != nil {
			return err
		}
		total, err := u.AuditLogs().Count(ctx, filter)
		if err != nil {
			return err
		}
		page.Entries = entries
		page.Total = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}
