// Package memory provides an in-process repository.Store used for local runs
// and tests. Writers are serialised by a mutex and work on a copy of the state
// that replaces the live state only when the unit of work succeeds.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/repository"
)

var errReadOnly = errors.New("memory store: write attempted in read-only unit")

// Store is a mutex-guarded in-memory repository.Store.
type Store struct {
	mu    sync.RWMutex
	state *state
	audit []domain.AuditLogEntry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: newState()}
}

var _ repository.Store = (*Store)(nil)

// Atomically runs fn on a working copy and commits it when fn returns nil.
func (s *Store) Atomically(ctx context.Context, fn func(repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	uow := &unit{st: s.state.clone(), committedAudit: s.audit}
	if err := fn(uow); err != nil {
		return err
	}
	s.state = uow.st
	s.audit = append(s.audit, uow.pendingAudit...)
	return nil
}

// Read runs fn against the live state under a read lock.
func (s *Store) Read(ctx context.Context, fn func(repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&unit{st: s.state, committedAudit: s.audit, readOnly: true})
}

type state struct {
	profiles          map[string]*domain.UserProfile
	approvals         map[string]domain.ApprovalRecord
	doctors           map[string]domain.DoctorProfile
	facilities        []domain.MedicalFacility
	devices           map[string]*domain.Device
	appointments      map[int64]domain.Appointment
	records           map[string]*domain.PatientRecord
	nextFacilityID    int64
	nextAppointmentID int64
}

func newState() *state {
	return &state{
		profiles:     make(map[string]*domain.UserProfile),
		approvals:    make(map[string]domain.ApprovalRecord),
		doctors:      make(map[string]domain.DoctorProfile),
		devices:      make(map[string]*domain.Device),
		appointments: make(map[int64]domain.Appointment),
		records:      make(map[string]*domain.PatientRecord),
	}
}

func (st *state) clone() *state {
	cp := newState()
	for k, v := range st.profiles {
		cp.profiles[k] = v.Clone()
	}
	for k, v := range st.approvals {
		cp.approvals[k] = v
	}
	for k, v := range st.doctors {
		cp.doctors[k] = v
	}
	cp.facilities = append([]domain.MedicalFacility(nil), st.facilities...)
	for k, v := range st.devices {
		cp.devices[k] = v.Clone()
	}
	for k, v := range st.appointments {
		cp.appointments[k] = v
	}
	for k, v := range st.records {
		cp.records[k] = &domain.PatientRecord{
			Patient:  v.Patient,
			Vitals:   append([]domain.VitalSigns(nil), v.Vitals...),
			Symptoms: append([]domain.Symptom(nil), v.Symptoms...),
		}
	}
	cp.nextFacilityID = st.nextFacilityID
	cp.nextAppointmentID = st.nextAppointmentID
	return cp
}

// unit is the Repositories view handed to one unit of work.
type unit struct {
	st             *state
	committedAudit []domain.AuditLogEntry
	pendingAudit   []domain.AuditLogEntry
	readOnly       bool
}

func (u *unit) Profiles() repository.ProfileRepository         { return profiles{u} }
func (u *unit) Approvals() repository.ApprovalRepository       { return approvals{u} }
func (u *unit) Doctors() repository.DoctorRepository           { return doctors{u} }
func (u *unit) AuditLogs() repository.AuditLogRepository       { return auditLogs{u} }
func (u *unit) Facilities() repository.FacilityRepository      { return facilities{u} }
func (u *unit) Devices() repository.DeviceRepository           { return devices{u} }
func (u *unit) Appointments() repository.AppointmentRepository { return appointments{u} }
func (u *unit) Records() repository.PatientRecordRepository    { return records{u} }

func (u *unit) writable() error {
	if u.readOnly {
		return errReadOnly
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
