package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/events"
	"github.com/spec-kit/care-access/internal/repository"
)

func TestFacilities(t *testing.T) {
	f := newFixture(t)
	svc := NewFacilityService(f.deps)
	f.admin(t, adminPrincipal)
	f.user(t, "pat", domain.RolePatient)
	input := FacilityInput{Name: "North Clinic", FacilityType: "clinic", Latitude: 52.1, Longitude: 4.3}

	_, err := svc.AddFacility(f.ctx, "pat", input)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.AddFacility(f.ctx, adminPrincipal, FacilityInput{Name: "No type"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.AddFacility(f.ctx, adminPrincipal, FacilityInput{Name: "Far", FacilityType: "clinic", Latitude: 91})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	facility, err := svc.AddFacility(f.ctx, adminPrincipal, input)
	require.NoError(t, err)
	assert.NotZero(t, facility.ID)

	list, err := svc.ListFacilities(f.ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "North Clinic", list[0].Name)

	action := domain.AuditAddFacility
	page, err := f.audit.Query(f.ctx, rootPrincipal, AuditQuery{Action: &action})
	require.NoError(t, err)
	assert.Len(t, page.Entries, 1)
}

func TestDeviceLinking(t *testing.T) {
	f := newFixture(t)
	svc := NewDeviceService(f.deps)
	f.admin(t, adminPrincipal)
	f.user(t, "p1", domain.RolePatient)
	f.user(t, "p2", domain.RolePatient)

	_, err := svc.CreateDevice(f.ctx, "p1", "dev-1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	device, err := svc.CreateDevice(f.ctx, adminPrincipal, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, domain.DeviceActive, device.Status)
	_, err = svc.CreateDevice(f.ctx, adminPrincipal, "dev-1")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.LinkDevice(f.ctx, adminPrincipal, "dev-1", "p1")
	require.NoError(t, err)
	assert.Len(t, f.auditEntries(t, domain.AuditLinkDevice, "p1"), 1)

	_, err = svc.LinkDevice(f.ctx, adminPrincipal, "dev-1", "p1")
	require.NoError(t, err)
	assert.Len(t, f.auditEntries(t, domain.AuditLinkDevice, "p1"), 1)

	device, err = svc.LinkDevice(f.ctx, adminPrincipal, "dev-1", "p2")
	require.NoError(t, err)
	assert.Equal(t, "p2", *device.LinkedPatient)
	assert.Len(t, f.auditEntries(t, domain.AuditReassignDevice, "p2"), 1)

	moved := f.events.ofType(events.EventDeviceReassigned)
	require.Len(t, moved, 2)
	payload := moved[1].Payload.(events.DeviceReassignedPayload)
	assert.Equal(t, "p1", *payload.FromPatient)

	own, err := svc.DevicesByPatient(f.ctx, "p2", "p2")
	require.NoError(t, err)
	assert.Len(t, own, 1)
	_, err = svc.DevicesByPatient(f.ctx, "p1", "p2")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	device, err = svc.ToggleDeviceStatus(f.ctx, adminPrincipal, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, domain.DeviceInactive, device.Status)

	device, err = svc.UnlinkDevice(f.ctx, adminPrincipal, "dev-1")
	require.NoError(t, err)
	assert.Nil(t, device.LinkedPatient)
	assert.Len(t, f.auditEntries(t, domain.AuditUnlinkDevice, "p2"), 1)

	all, err := svc.ListDevices(f.ctx, adminPrincipal)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.LinkDevice(f.ctx, adminPrincipal, "dev-404", "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.LinkDevice(f.ctx, adminPrincipal, "dev-1", "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAppointments(t *testing.T) {
	f := newFixture(t)
	svc := NewAppointmentService(f.deps)
	f.admin(t, adminPrincipal)
	f.user(t, "pat", domain.RolePatient)
	_, err := f.approvals.RegisterDoctor(f.ctx, "doc", DoctorInput{Name: "Dr. Ada", Specialty: "cardiology"})
	require.NoError(t, err)

	slot := AppointmentInput{Doctor: "doc", StartTime: epoch.Add(24 * time.Hour), EndTime: epoch.Add(25 * time.Hour)}

	_, err = svc.BookAppointment(f.ctx, "pat", slot)
	assert.ErrorIs(t, err, domain.ErrNotApproved, "caller not approved")

	f.approve(t, "pat")
	_, err = svc.BookAppointment(f.ctx, "pat", slot)
	assert.ErrorIs(t, err, domain.ErrNotApproved, "doctor not verified")

	f.approve(t, "doc")
	_, err = f.approvals.VerifyDoctor(f.ctx, adminPrincipal, "doc")
	require.NoError(t, err)

	_, err = svc.BookAppointment(f.ctx, "pat", AppointmentInput{Doctor: "doc", StartTime: slot.EndTime, EndTime: slot.StartTime})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	appt, err := svc.BookAppointment(f.ctx, "pat", slot)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentPending, appt.Status)

	mine, err := svc.ListAppointments(f.ctx, "pat")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := svc.ListAppointments(f.ctx, "doc")
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
	none, err := svc.ListAppointments(f.ctx, "stranger")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.OverrideAppointmentStatus(f.ctx, "pat", appt.ID, domain.AppointmentCancelled)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.OverrideAppointmentStatus(f.ctx, adminPrincipal, appt.ID, domain.AppointmentStatus("lost"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.OverrideAppointmentStatus(f.ctx, adminPrincipal, 999, domain.AppointmentCancelled)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	updated, err := svc.OverrideAppointmentStatus(f.ctx, adminPrincipal, appt.ID, domain.AppointmentCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentCancelled, updated.Status)
	assert.Len(t, f.auditEntries(t, domain.AuditOverrideAppointment, "pat"), 1)
	assert.Len(t, f.events.ofType(events.EventAppointmentStatus), 1)
}

func TestPatientRecords(t *testing.T) {
	f := newFixture(t)
	svc := NewRecordService(f.deps)
	f.admin(t, adminPrincipal)
	f.user(t, "pat", domain.RolePatient)
	f.user(t, "other", domain.RolePatient)
	vitals := domain.VitalSigns{Temperature: 36.8, BloodPressure: "120/80", OxygenSaturation: 98, HeartRate: 70}

	_, err := svc.LogVitals(f.ctx, "pat", vitals)
	assert.ErrorIs(t, err, domain.ErrNotApproved)

	f.approve(t, "pat")
	logged, err := svc.LogVitals(f.ctx, "pat", vitals)
	require.NoError(t, err)
	assert.True(t, epoch.Equal(logged.Timestamp))

	_, err = svc.LogSymptom(f.ctx, "pat", domain.Symptom{Description: "headache", Severity: 11})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.LogSymptom(f.ctx, "pat", domain.Symptom{Description: "headache", Severity: 4})
	require.NoError(t, err)

	_, err = svc.LogVitals(f.ctx, "pat", domain.VitalSigns{Temperature: 60, BloodPressure: "1/1", HeartRate: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	own, err := svc.OwnRecords(f.ctx, "pat")
	require.NoError(t, err)
	assert.Len(t, own.Vitals, 1)
	assert.Len(t, own.Symptoms, 1)

	t.Run("approved principal without a profile cannot log", func(t *testing.T) {
		require.NoError(t, f.store.Atomically(f.ctx, func(repos repository.Repositories) error {
			return repos.Approvals().Upsert(f.ctx, &domain.ApprovalRecord{Principal: "ghost", Status: domain.ApprovalApproved, UpdatedAt: epoch})
		}))
		_, err := svc.LogVitals(f.ctx, "ghost", vitals)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		_, err = svc.LogSymptom(f.ctx, "ghost", domain.Symptom{Description: "headache", Severity: 4})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		record, err := svc.OwnRecords(f.ctx, "ghost")
		require.NoError(t, err)
		assert.Empty(t, record.Vitals)
		assert.Empty(t, record.Symptoms)
	})

	t.Run("admin reads any record", func(t *testing.T) {
		record, err := svc.RecordsByPatient(f.ctx, adminPrincipal, "pat")
		require.NoError(t, err)
		assert.Len(t, record.Vitals, 1)
	})

	t.Run("patients cannot read each other", func(t *testing.T) {
		_, err := svc.RecordsByPatient(f.ctx, "other", "pat")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("doctor needs verification", func(t *testing.T) {
		_, err := f.approvals.RegisterDoctor(f.ctx, "doc", DoctorInput{Name: "Dr. Ada", Specialty: "cardiology"})
		require.NoError(t, err)
		f.approve(t, "doc")

		_, err = svc.RecordsByPatient(f.ctx, "doc", "pat")
		assert.ErrorIs(t, err, domain.ErrNotApproved)

		_, err = f.approvals.VerifyDoctor(f.ctx, adminPrincipal, "doc")
		require.NoError(t, err)
		record, err := svc.RecordsByPatient(f.ctx, "doc", "pat")
		require.NoError(t, err)
		assert.Len(t, record.Symptoms, 1)
	})
}
