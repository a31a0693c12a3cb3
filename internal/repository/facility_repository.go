package repository

import (
	"context"

	"github.com/spec-kit/care-access/internal/domain"
)

// FacilityRepository persists medical facilities.
type FacilityRepository interface {
	Create(ctx context.Context, facility *domain.MedicalFacility) error
	List(ctx context.Context) ([]domain.MedicalFacility, error)
}

type facilityRepository struct {
	db querier
}

func (r *facilityRepository) Create(ctx context.Context, f *domain.MedicalFacility) error {
	const query = `
        INSERT INTO medical_facilities (name, facility_type, address, phone, latitude, longitude)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		f.Name,
		f.FacilityType,
		f.Address,
		f.Phone,
		f.Latitude,
		f.Longitude,
	).Scan(&f.ID, &f.CreatedAt)
}

func (r *facilityRepository) List(ctx context.Context) ([]domain.MedicalFacility, error) {
	const query = `
        SELECT id, name, facility_type, address, phone, latitude, longitude, created_at
        FROM medical_facilities ORDER BY id ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MedicalFacility
	for rows.Next() {
		var f domain.MedicalFacility
		if err := rows.Scan(&f.ID, &f.Name, &f.FacilityType, &f.Address, &f.Phone, &f.Latitude, &f.Longitude, &f.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}
