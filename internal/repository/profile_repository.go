package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/care-access/internal/domain"
)

// ProfileRepository persists user profiles together with their role record.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.UserProfile) error
	Update(ctx context.Context, profile *domain.UserProfile) error
	Get(ctx context.Context, principal string) (*domain.UserProfile, error)
	ListByRoles(ctx context.Context, roles ...domain.Role) ([]*domain.UserProfile, error)
}

type profileRepository struct {
	db querier
}

const profileColumns = `principal, name, base_role, status, medical_role, role, previous_role, role_expires_at, created_at, updated_at`

func (r *profileRepository) Create(ctx context.Context, p *domain.UserProfile) error {
	const query = `
        INSERT INTO user_profiles (principal, name, base_role, status, medical_role, role, previous_role, role_expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		p.Principal,
		p.Name,
		p.BaseRole,
		p.Status,
		p.MedicalRole,
		p.Role,
		p.PreviousRole,
		p.RoleExpiresAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return mapWriteError(err)
}

func (r *profileRepository) Update(ctx context.Context, p *domain.UserProfile) error {
	const query = `
        UPDATE user_profiles
        SET name=$1, base_role=$2, status=$3, medical_role=$4, role=$5, previous_role=$6, role_expires_at=$7, updated_at=NOW()
        WHERE principal=$8
        RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		p.Name,
		p.BaseRole,
		p.Status,
		p.MedicalRole,
		p.Role,
		p.PreviousRole,
		p.RoleExpiresAt,
		p.Principal,
	).Scan(&p.UpdatedAt)
	return mapReadError(err)
}

func (r *profileRepository) Get(ctx context.Context, principal string) (*domain.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE principal=$1`
	profile, err := scanProfile(r.db.QueryRow(ctx, query, principal))
	if err != nil {
		return nil, mapReadError(err)
	}
	return profile, nil
}

func (r *profileRepository) ListByRoles(ctx context.Context, roles ...domain.Role) ([]*domain.UserProfile, error) {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE role = ANY($1) ORDER BY principal ASC`
	rows, err := r.db.Query(ctx, query, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.UserProfile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, profile)
	}
	return result, rows.Err()
}

func scanProfile(row pgx.Row) (*domain.UserProfile, error) {
	var p domain.UserProfile
	if err := row.Scan(
		&p.Principal,
		&p.Name,
		&p.BaseRole,
		&p.Status,
		&p.MedicalRole,
		&p.Role,
		&p.PreviousRole,
		&p.RoleExpiresAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

const uniqueViolation = "23505"

func mapReadError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrConflict
	}
	return err
}
