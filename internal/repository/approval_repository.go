package repository

import (
	"context"

	"github.com/spec-kit/care-access/internal/domain"
)

// ApprovalRepository persists approval gate records.
type ApprovalRepository interface {
	Upsert(ctx context.Context, record *domain.ApprovalRecord) error
	Get(ctx context.Context, principal string) (*domain.ApprovalRecord, error)
	List(ctx context.Context) ([]domain.ApprovalRecord, error)
}

type approvalRepository struct {
	db querier
}

func (r *approvalRepository) Upsert(ctx context.Context, record *domain.ApprovalRecord) error {
	const query = `
        INSERT INTO approvals (principal, status)
        VALUES ($1, $2)
        ON CONFLICT (principal) DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query, record.Principal, record.Status).Scan(&record.UpdatedAt)
}

func (r *approvalRepository) Get(ctx context.Context, principal string) (*domain.ApprovalRecord, error) {
	const query = `SELECT principal, status, updated_at FROM approvals WHERE principal=$1`
	var record domain.ApprovalRecord
	if err := r.db.QueryRow(ctx, query, principal).Scan(&record.Principal, &record.Status, &record.UpdatedAt); err != nil {
		return nil, mapReadError(err)
	}
	return &record, nil
}

func (r *approvalRepository) List(ctx context.Context) ([]domain.ApprovalRecord, error) {
	const query = `SELECT principal, status, updated_at FROM approvals ORDER BY principal ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ApprovalRecord
	for rows.Next() {
		var record domain.ApprovalRecord
		if err := rows.Scan(&record.Principal, &record.Status, &record.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
