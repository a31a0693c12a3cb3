package repository

import (
	"context"

	"github.com/spec-kit/care-access/internal/domain"
)

// AuditLogRepository stores append-only audit entries. There is no update or
// delete path.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *domain.AuditLogEntry) error
	// List returns entries newest first.
	List(ctx context.Context, filter domain.AuditFilter, offset, limit int) ([]domain.AuditLogEntry, error)
	Count(ctx context.Context, filter domain.AuditFilter) (int64, error)
}

type auditLogRepository struct {
	db querier
}

func (r *auditLogRepository) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	const query = `
        INSERT INTO audit_logs (id, action, performed_by, target_user, occurred_at, metadata)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING seq`
	return r.db.QueryRow(ctx, query,
		entry.ID,
		entry.Action,
		entry.PerformedBy,
		entry.TargetUser,
		entry.Timestamp,
		entry.Metadata,
	).Scan(&entry.Seq)
}

func (r *auditLogRepository) List(ctx context.Context, filter domain.AuditFilter, offset, limit int) ([]domain.AuditLogEntry, error) {
	const query = `
        SELECT id, seq, action, performed_by, target_user, occurred_at, metadata
        FROM audit_logs
        WHERE ($1::text IS NULL OR action = $1) AND ($2::text IS NULL OR target_user = $2)
        ORDER BY seq DESC
        OFFSET $3 LIMIT $4`
	rows, err := r.db.Query(ctx, query, filter.Action, filter.TargetUser, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditLogEntry
	for rows.Next() {
		var entry domain.AuditLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Seq,
			&entry.Action,
			&entry.PerformedBy,
			&entry.TargetUser,
			&entry.Timestamp,
			&entry.Metadata,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *auditLogRepository) Count(ctx context.Context, filter domain.AuditFilter) (int64, error) {
	const query = `
        SELECT COUNT(*) FROM audit_logs
        WHERE ($1::text IS NULL OR action = $1) AND ($2::text IS NULL OR target_user = $2)`
	var n int64
	err := r.db.QueryRow(ctx, query, filter.Action, filter.TargetUser).Scan(&n)
	return n, err
}
