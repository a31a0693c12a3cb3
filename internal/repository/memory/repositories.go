package memory

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/repository"
)

// stamp keeps a timestamp set by the caller and falls back to the wall clock.
func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

type profiles struct{ u *unit }

func (r profiles) Create(_ context.Context, p *domain.UserProfile) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	if _, exists := r.u.st.profiles[p.Principal]; exists {
		return domain.ErrConflict
	}
	p.CreatedAt = stamp(p.CreatedAt)
	p.UpdatedAt = stamp(p.UpdatedAt)
	r.u.st.profiles[p.Principal] = p.Clone()
	return nil
}

func (r profiles) Update(_ context.Context, p *domain.UserProfile) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	current, exists := r.u.st.profiles[p.Principal]
	if !exists {
		return domain.ErrNotFound
	}
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = stamp(p.UpdatedAt)
	r.u.st.profiles[p.Principal] = p.Clone()
	return nil
}

func (r profiles) Get(_ context.Context, principal string) (*domain.UserProfile, error) {
	p, exists := r.u.st.profiles[principal]
	if !exists {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r profiles) ListByRoles(_ context.Context, roles ...domain.Role) ([]*domain.UserProfile, error) {
	wanted := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		wanted[role] = struct{}{}
	}
	var result []*domain.UserProfile
	for _, key := range sortedKeys(r.u.st.profiles) {
		p := r.u.st.profiles[key]
		if _, ok := wanted[p.Role]; ok {
			result = append(result, p.Clone())
		}
	}
	return result, nil
}

type approvals struct{ u *unit }

func (r approvals) Upsert(_ context.Context, record *domain.ApprovalRecord) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	record.UpdatedAt = stamp(record.UpdatedAt)
	r.u.st.approvals[record.Principal] = *record
	return nil
}

func (r approvals) Get(_ context.Context, principal string) (*domain.ApprovalRecord, error) {
	record, exists := r.u.st.approvals[principal]
	if !exists {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

func (r approvals) List(_ context.Context) ([]domain.ApprovalRecord, error) {
	var result []domain.ApprovalRecord
	for _, key := range sortedKeys(r.u.st.approvals) {
		result = append(result, r.u.st.approvals[key])
	}
	return result, nil
}

type doctors struct{ u *unit }

func (r doctors) Create(_ context.Context, d *domain.DoctorProfile) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	if _, exists := r.u.st.doctors[d.Principal]; exists {
		return domain.ErrConflict
	}
	d.CreatedAt = stamp(d.CreatedAt)
	d.UpdatedAt = stamp(d.UpdatedAt)
	r.u.st.doctors[d.Principal] = *d
	return nil
}

func (r doctors) Update(_ context.Context, d *domain.DoctorProfile) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	current, exists := r.u.st.doctors[d.Principal]
	if !exists {
		return domain.ErrNotFound
	}
	d.CreatedAt = current.CreatedAt
	d.UpdatedAt = stamp(d.UpdatedAt)
	r.u.st.doctors[d.Principal] = *d
	return nil
}

func (r doctors) Get(_ context.Context, principal string) (*domain.DoctorProfile, error) {
	d, exists := r.u.st.doctors[principal]
	if !exists {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (r doctors) List(_ context.Context) ([]domain.DoctorProfile, error) {
	result := make([]domain.DoctorProfile, 0, len(r.u.st.doctors))
	for _, d := range r.u.st.doctors {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].Principal < result[j].Principal
	})
	return result, nil
}

type auditLogs struct{ u *unit }

func (r auditLogs) Append(_ context.Context, entry *domain.AuditLogEntry) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	entry.Seq = int64(len(r.u.committedAudit) + len(r.u.pendingAudit) + 1)
	r.u.pendingAudit = append(r.u.pendingAudit, *entry)
	return nil
}

// all returns committed and pending entries in insertion order.
func (r auditLogs) all() []domain.AuditLogEntry {
	if len(r.u.pendingAudit) == 0 {
		return r.u.committedAudit
	}
	merged := make([]domain.AuditLogEntry, 0, len(r.u.committedAudit)+len(r.u.pendingAudit))
	merged = append(merged, r.u.committedAudit...)
	return append(merged, r.u.pendingAudit...)
}

func (r auditLogs) List(_ context.Context, filter domain.AuditFilter, offset, limit int) ([]domain.AuditLogEntry, error) {
	entries := r.all()
	var result []domain.AuditLogEntry
	skipped := 0
	for i := len(entries) - 1; i >= 0 && len(result) < limit; i-- {
		if !filter.Matches(entries[i]) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		result = append(result, entries[i])
	}
	return result, nil
}

func (r auditLogs) Count(_ context.Context, filter domain.AuditFilter) (int64, error) {
	var n int64
	for _, e := range r.all() {
		if filter.Matches(e) {
			n++
		}
	}
	return n, nil
}

type facilities struct{ u *unit }

func (r facilities) Create(_ context.Context, f *domain.MedicalFacility) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	r.u.st.nextFacilityID++
	f.ID = r.u.st.nextFacilityID
	f.CreatedAt = stamp(f.CreatedAt)
	r.u.st.facilities = append(r.u.st.facilities, *f)
	return nil
}

func (r facilities) List(_ context.Context) ([]domain.MedicalFacility, error) {
	return append([]domain.MedicalFacility(nil), r.u.st.facilities...), nil
}

type devices struct{ u *unit }

func (r devices) Create(_ context.Context, d *domain.Device) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	if _, exists := r.u.st.devices[d.DeviceID]; exists {
		return domain.ErrConflict
	}
	r.u.st.devices[d.DeviceID] = d.Clone()
	return nil
}

func (r devices) Update(_ context.Context, d *domain.Device) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	if _, exists := r.u.st.devices[d.DeviceID]; !exists {
		return domain.ErrNotFound
	}
	r.u.st.devices[d.DeviceID] = d.Clone()
	return nil
}

func (r devices) Get(_ context.Context, deviceID string) (*domain.Device, error) {
	d, exists := r.u.st.devices[deviceID]
	if !exists {
		return nil, domain.ErrNotFound
	}
	return d.Clone(), nil
}

func (r devices) List(_ context.Context) ([]domain.Device, error) {
	var result []domain.Device
	for _, key := range sortedKeys(r.u.st.devices) {
		result = append(result, *r.u.st.devices[key].Clone())
	}
	return result, nil
}

func (r devices) ListByPatient(_ context.Context, patient string) ([]domain.Device, error) {
	var result []domain.Device
	for _, key := range sortedKeys(r.u.st.devices) {
		d := r.u.st.devices[key]
		if d.LinkedPatient != nil && *d.LinkedPatient == patient {
			result = append(result, *d.Clone())
		}
	}
	return result, nil
}

type appointments struct{ u *unit }

func (r appointments) Create(_ context.Context, a *domain.Appointment) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	r.u.st.nextAppointmentID++
	a.ID = r.u.st.nextAppointmentID
	a.CreatedAt = stamp(a.CreatedAt)
	a.UpdatedAt = stamp(a.UpdatedAt)
	r.u.st.appointments[a.ID] = *a
	return nil
}

func (r appointments) UpdateStatus(_ context.Context, id int64, status domain.AppointmentStatus, at time.Time) (*domain.Appointment, error) {
	if err := r.u.writable(); err != nil {
		return nil, err
	}
	a, exists := r.u.st.appointments[id]
	if !exists {
		return nil, domain.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = stamp(at)
	r.u.st.appointments[id] = a
	return &a, nil
}

func (r appointments) Get(_ context.Context, id int64) (*domain.Appointment, error) {
	a, exists := r.u.st.appointments[id]
	if !exists {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r appointments) List(_ context.Context, filter repository.AppointmentFilter) ([]domain.Appointment, error) {
	var result []domain.Appointment
	for _, a := range r.u.st.appointments {
		if filter.Patient != nil && a.Patient != *filter.Patient {
			continue
		}
		if filter.Doctor != nil && a.Doctor != *filter.Doctor {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartTime.Equal(result[j].StartTime) {
			return result[i].StartTime.Before(result[j].StartTime)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

type records struct{ u *unit }

func (r records) record(patient string) *domain.PatientRecord {
	rec, exists := r.u.st.records[patient]
	if !exists {
		rec = &domain.PatientRecord{Patient: patient}
		r.u.st.records[patient] = rec
	}
	return rec
}

func (r records) AppendVitals(_ context.Context, patient string, v domain.VitalSigns) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	rec := r.record(patient)
	rec.Vitals = append(rec.Vitals, v)
	return nil
}

func (r records) AppendSymptom(_ context.Context, patient string, s domain.Symptom) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	rec := r.record(patient)
	rec.Symptoms = append(rec.Symptoms, s)
	return nil
}

func (r records) Get(_ context.Context, patient string) (*domain.PatientRecord, error) {
	rec, exists := r.u.st.records[patient]
	if !exists {
		return &domain.PatientRecord{Patient: patient}, nil
	}
	return &domain.PatientRecord{
		Patient:  rec.Patient,
		Vitals:   append([]domain.VitalSigns(nil), rec.Vitals...),
		Symptoms: append([]domain.Symptom(nil), rec.Symptoms...),
	}, nil
}
