package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store runs repository work as a single unit.
type Store interface {
	// Atomically serialises writers. Changes made by fn are committed only when
	// fn returns nil.
	Atomically(ctx context.Context, fn func(Repositories) error) error
	// Read runs fn against a consistent snapshot. Writes are rejected.
	Read(ctx context.Context, fn func(Repositories) error) error
}

// Repositories groups the repositories bound to one unit of work.
type Repositories interface {
	Profiles() ProfileRepository
	Approvals() ApprovalRepository
	Doctors() DoctorRepository
	AuditLogs() AuditLogRepository
	Facilities() FacilityRepository
	Devices() DeviceRepository
	Appointments() AppointmentRepository
	Records() PatientRecordRepository
}

// accessLockKey identifies the advisory lock serialising access mutations.
const accessLockKey int64 = 0x6361726561636373

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is the pgx-backed Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Atomically runs fn in a transaction holding the access advisory lock.
func (s *PostgresStore) Atomically(ctx context.Context, fn func(Repositories) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, accessLockKey); err != nil {
			return err
		}
		return fn(pgRepositories{db: tx})
	})
}

// Read runs fn in a read-only repeatable-read transaction.
func (s *PostgresStore) Read(ctx context.Context, fn func(Repositories) error) error {
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	return pgx.BeginTxFunc(ctx, s.pool, opts, func(tx pgx.Tx) error {
		return fn(pgRepositories{db: tx})
	})
}

type pgRepositories struct {
	db querier
}

func (r pgRepositories) Profiles() ProfileRepository         { return &profileRepository{db: r.db} }
func (r pgRepositories) Approvals() ApprovalRepository       { return &approvalRepository{db: r.db} }
func (r pgRepositories) Doctors() DoctorRepository           { return &doctorRepository{db: r.db} }
func (r pgRepositories) AuditLogs() AuditLogRepository       { return &auditLogRepository{db: r.db} }
func (r pgRepositories) Facilities() FacilityRepository      { return &facilityRepository{db: r.db} }
func (r pgRepositories) Devices() DeviceRepository           { return &deviceRepository{db: r.db} }
func (r pgRepositories) Appointments() AppointmentRepository { return &appointmentRepository{db: r.db} }
func (r pgRepositories) Records() PatientRecordRepository    { return &patientRecordRepository{db: r.db} }
