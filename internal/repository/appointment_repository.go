package repository

import (
	"context"
	"time"

	"github.com/spec-kit/care-access/internal/domain"
)

// AppointmentFilter restricts appointment listings to one participant.
type AppointmentFilter struct {
	Patient *string
	Doctor  *string
}

// AppointmentRepository persists appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus, at time.Time) (*domain.Appointment, error)
	Get(ctx context.Context, id int64) (*domain.Appointment, error)
	List(ctx context.Context, filter AppointmentFilter) ([]domain.Appointment, error)
}

type appointmentRepository struct {
	db querier
}

const appointmentColumns = `id, patient, doctor, start_time, end_time, description, status, created_at, updated_at`

func (r *appointmentRepository) Create(ctx context.Context, a *domain.Appointment) error {
	const query = `
        INSERT INTO appointments (patient, doctor, start_time, end_time, description, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		a.Patient,
		a.Doctor,
		a.StartTime,
		a.EndTime,
		a.Description,
		a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus, at time.Time) (*domain.Appointment, error) {
	query := `UPDATE appointments SET status=$1, updated_at=$3 WHERE id=$2 RETURNING ` + appointmentColumns
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, status, id, at))
	if err != nil {
		return nil, mapReadError(err)
	}
	return appt, nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id=$1`
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapReadError(err)
	}
	return appt, nil
}

func (r *appointmentRepository) List(ctx context.Context, filter AppointmentFilter) ([]domain.Appointment, error) {
	query := `
        SELECT ` + appointmentColumns + `
        FROM appointments
        WHERE ($1::text IS NULL OR patient = $1) AND ($2::text IS NULL OR doctor = $2)
        ORDER BY start_time ASC, id ASC`
	rows, err := r.db.Query(ctx, query, filter.Patient, filter.Doctor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *appt)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var a domain.Appointment
	if err := row.Scan(
		&a.ID,
		&a.Patient,
		&a.Doctor,
		&a.StartTime,
		&a.EndTime,
		&a.Description,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
