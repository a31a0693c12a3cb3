package repository

import (
	"context"

	"github.com/spec-kit/care-access/internal/domain"
)

// DoctorRepository persists doctor registrations.
type DoctorRepository interface {
	Create(ctx context.Context, doctor *domain.DoctorProfile) error
	Update(ctx context.Context, doctor *domain.DoctorProfile) error
	Get(ctx context.Context, principal string) (*domain.DoctorProfile, error)
	List(ctx context.Context) ([]domain.DoctorProfile, error)
}

type doctorRepository struct {
	db querier
}

func (r *doctorRepository) Create(ctx context.Context, d *domain.DoctorProfile) error {
	const query = `
        INSERT INTO doctor_profiles (principal, name, specialty, verified)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query, d.Principal, d.Name, d.Specialty, d.Verified).Scan(&d.CreatedAt, &d.UpdatedAt)
	return mapWriteError(err)
}

func (r *doctorRepository) Update(ctx context.Context, d *domain.DoctorProfile) error {
	const query = `
        UPDATE doctor_profiles SET name=$1, specialty=$2, verified=$3, updated_at=NOW()
        WHERE principal=$4
        RETURNING updated_at`
	return mapReadError(r.db.QueryRow(ctx, query, d.Name, d.Specialty, d.Verified, d.Principal).Scan(&d.UpdatedAt))
}

func (r *doctorRepository) Get(ctx context.Context, principal string) (*domain.DoctorProfile, error) {
	const query = `
        SELECT principal, name, specialty, verified, created_at, updated_at
        FROM doctor_profiles WHERE principal=$1`
	var d domain.DoctorProfile
	if err := r.db.QueryRow(ctx, query, principal).Scan(
		&d.Principal,
		&d.Name,
		&d.Specialty,
		&d.Verified,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, mapReadError(err)
	}
	return &d, nil
}

func (r *doctorRepository) List(ctx context.Context) ([]domain.DoctorProfile, error) {
	const query = `
        SELECT principal, name, specialty, verified, created_at, updated_at
        FROM doctor_profiles ORDER BY name ASC, principal ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DoctorProfile
	for rows.Next() {
		var d domain.DoctorProfile
		if err := rows.Scan(&d.Principal, &d.Name, &d.Specialty, &d.Verified, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
