package repository

import (
	"context"

	"github.com/spec-kit/care-access/internal/domain"
)

// DeviceRepository persists monitoring devices and their patient links.
type DeviceRepository interface {
	Create(ctx context.Context, device *domain.Device) error
	Update(ctx context.Context, device *domain.Device) error
	Get(ctx context.Context, deviceID string) (*domain.Device, error)
	List(ctx context.Context) ([]domain.Device, error)
	ListByPatient(ctx context.Context, patient string) ([]domain.Device, error)
}

type deviceRepository struct {
	db querier
}

const deviceColumns = `device_id, status, linked_patient, last_sync`

func (r *deviceRepository) Create(ctx context.Context, d *domain.Device) error {
	const query = `
        INSERT INTO devices (device_id, status, linked_patient, last_sync)
        VALUES ($1,$2,$3,$4)`
	_, err := r.db.Exec(ctx, query, d.DeviceID, d.Status, d.LinkedPatient, d.LastSync)
	return mapWriteError(err)
}

func (r *deviceRepository) Update(ctx context.Context, d *domain.Device) error {
	const query = `UPDATE devices SET status=$1, linked_patient=$2, last_sync=$3 WHERE device_id=$4`
	cmd, err := r.db.Exec(ctx, query, d.Status, d.LinkedPatient, d.LastSync, d.DeviceID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *deviceRepository) Get(ctx context.Context, deviceID string) (*domain.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE device_id=$1`
	var d domain.Device
	if err := r.db.QueryRow(ctx, query, deviceID).Scan(&d.DeviceID, &d.Status, &d.LinkedPatient, &d.LastSync); err != nil {
		return nil, mapReadError(err)
	}
	return &d, nil
}

func (r *deviceRepository) List(ctx context.Context) ([]domain.Device, error) {
	return r.list(ctx, `SELECT `+deviceColumns+` FROM devices ORDER BY device_id ASC`)
}

func (r *deviceRepository) ListByPatient(ctx context.Context, patient string) ([]domain.Device, error) {
	return r.list(ctx, `SELECT `+deviceColumns+` FROM devices WHERE linked_patient=$1 ORDER BY device_id ASC`, patient)
}

func (r *deviceRepository) list(ctx context.Context, query string, args ...any) ([]domain.Device, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Device
	for rows.Next() {
		var d domain.Device
		if err := rows.Scan(&d.DeviceID, &d.Status, &d.LinkedPatient, &d.LastSync); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
