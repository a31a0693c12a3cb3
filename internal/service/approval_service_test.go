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

func TestRequestApprovalLifecycle(t *testing.T) {
	f := newFixture(t)
	f.user(t, "pat", domain.RolePatient)

	approved, err := f.approvals.IsApproved(f.ctx, "pat")
	require.NoError(t, err)
	assert.False(t, approved)

	record, err := f.approvals.RequestApproval(f.ctx, "pat")
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalPending, record.Status)

	_, err = f.approvals.RequestApproval(f.ctx, "pat")
	require.NoError(t, err)
	assert.Len(t, f.events.ofType(events.EventApprovalChanged), 1)

	_, err = f.approvals.SetApproval(f.ctx, rootPrincipal, "pat", domain.ApprovalRejected)
	require.NoError(t, err)
	record, err = f.approvals.RequestApproval(f.ctx, "pat")
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalPending, record.Status)

	f.approve(t, "pat")
	record, err = f.approvals.RequestApproval(f.ctx, "pat")
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalApproved, record.Status)

	approved, err = f.approvals.IsApproved(f.ctx, "pat")
	require.NoError(t, err)
	assert.True(t, approved)
}

func TestSetApprovalByNonAdminMutatesNothing(t *testing.T) {
	f := newFixture(t)
	f.user(t, "pat", domain.RolePatient)
	f.user(t, "other", domain.RolePatient)
	_, err := f.approvals.RequestApproval(f.ctx, "other")
	require.NoError(t, err)
	before := f.auditTotal(t)

	_, err = f.approvals.SetApproval(f.ctx, "pat", "other", domain.ApprovalApproved)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	records, err := f.approvals.ListApprovals(f.ctx, rootPrincipal)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.ApprovalPending, records[0].Status)
	assert.Equal(t, before, f.auditTotal(t))
}

func TestSetApprovalAuditsEachTransition(t *testing.T) {
	f := newFixture(t)
	f.admin(t, adminPrincipal)
	f.user(t, "pat", domain.RolePatient)

	for _, status := range []domain.ApprovalStatus{domain.ApprovalApproved, domain.ApprovalRejected, domain.ApprovalPending} {
		_, err := f.approvals.SetApproval(f.ctx, adminPrincipal, "pat", status)
		require.NoError(t, err)
	}
	approvedEntries := f.auditEntries(t, domain.AuditApproveUser, "pat")
	require.Len(t, approvedEntries, 1)
	require.NotNil(t, approvedEntries[0].Metadata)
	assert.Equal(t, "none -> approved", *approvedEntries[0].Metadata)
	assert.Len(t, f.auditEntries(t, domain.AuditRejectUser, "pat"), 1)
	assert.Len(t, f.auditEntries(t, domain.AuditResetApproval, "pat"), 1)
}

func TestSetApprovalValidation(t *testing.T) {
	f := newFixture(t)
	f.user(t, "pat", domain.RolePatient)

	_, err := f.approvals.SetApproval(f.ctx, rootPrincipal, "pat", domain.ApprovalStatus("maybe"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.approvals.SetApproval(f.ctx, rootPrincipal, "ghost", domain.ApprovalApproved)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListApprovalsRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	f.user(t, "pat", domain.RolePatient)
	_, err := f.approvals.ListApprovals(f.ctx, "pat")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegisterDoctor(t *testing.T) {
	f := newFixture(t)

	doctor, err := f.approvals.RegisterDoctor(f.ctx, "doc", DoctorInput{Name: "Dr. Ada", Specialty: "cardiology"})
	require.NoError(t, err)
	assert.False(t, doctor.Verified)

	info, err := f.lifecycle.GetRoleInfo(f.ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDoctor, info.Role)

	records, err := f.approvals.ListApprovals(f.ctx, rootPrincipal)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.ApprovalPending, records[0].Status)

	_, err = f.approvals.RegisterDoctor(f.ctx, "doc", DoctorInput{Name: "Dr. Ada", Specialty: "cardiology"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.approvals.RegisterDoctor(f.ctx, "doc2", DoctorInput{Name: "Dr. Bo"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	doctors, err := f.approvals.ListDoctors(f.ctx, rootPrincipal)
	require.NoError(t, err)
	assert.Len(t, doctors, 1)
	_, err = f.approvals.ListDoctors(f.ctx, "doc")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegisterDoctorWhileTemporaryAdminRevertsToDoctor(t *testing.T) {
	f := newFixture(t)
	f.user(t, "pat", domain.RolePatient)
	require.NoError(t, f.lifecycle.GrantTemporaryAdmin(f.ctx, rootPrincipal, "pat", epoch.Add(time.Hour)))

	_, err := f.approvals.RegisterDoctor(f.ctx, "pat", DoctorInput{Name: "Dr. Pat", Specialty: "oncology"})
	require.NoError(t, err)

	info, err := f.lifecycle.GetRoleInfo(f.ctx, "pat")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, info.Role)

	f.clock.Advance(2 * time.Hour)
	info, err = f.lifecycle.GetRoleInfo(f.ctx, "pat")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDoctor, info.Role)
}

func TestVerifyDoctor(t *testing.T) {
	f := newFixture(t)
	f.admin(t, adminPrincipal)
	_, err := f.approvals.RegisterDoctor(f.ctx, "doc", DoctorInput{Name: "Dr. Ada", Specialty: "cardiology"})
	require.NoError(t, err)

	t.Run("pending approval fails", func(t *testing.T) {
		_, err := f.approvals.VerifyDoctor(f.ctx, adminPrincipal, "doc")
		assert.ErrorIs(t, err, domain.ErrNotApproved)
	})

	t.Run("approved succeeds exactly once", func(t *testing.T) {
		f.approve(t, "doc")
		doctor, err := f.approvals.VerifyDoctor(f.ctx, adminPrincipal, "doc")
		require.NoError(t, err)
		assert.True(t, doctor.Verified)

		doctor, err = f.approvals.VerifyDoctor(f.ctx, adminPrincipal, "doc")
		require.NoError(t, err)
		assert.True(t, doctor.Verified)
		assert.Len(t, f.auditEntries(t, domain.AuditVerifyDoctor, "doc"), 1)
		assert.Len(t, f.events.ofType(events.EventDoctorVerified), 1)
	})

	t.Run("approved principal without doctor profile", func(t *testing.T) {
		f.user(t, "pat", domain.RolePatient)
		f.approve(t, "pat")
		_, err := f.approvals.VerifyDoctor(f.ctx, adminPrincipal, "pat")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("patient caller", func(t *testing.T) {
		_, err := f.approvals.VerifyDoctor(f.ctx, "pat", "doc")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("withdrawing approval clears verification", func(t *testing.T) {
		_, err := f.approvals.SetApproval(f.ctx, adminPrincipal, "doc", domain.ApprovalRejected)
		require.NoError(t, err)
		doctor, err := f.approvals.GetDoctorProfile(f.ctx, "doc")
		require.NoError(t, err)
		assert.False(t, doctor.Verified)
	})
}

func TestApprovalNeedsAProfile(t *testing.T) {
	f := newFixture(t)

	_, err := f.approvals.RequestApproval(f.ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.approvals.SetApproval(f.ctx, rootPrincipal, "ghost", domain.ApprovalApproved)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	approved, err := f.approvals.IsApproved(f.ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, approved)
	assert.Empty(t, f.auditEntries(t, domain.AuditApproveUser, "ghost"))
}

func TestSetApprovalChecksProfileEvenWithExistingRecord(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Atomically(f.ctx, func(repos repository.Repositories) error {
		return repos.Approvals().Upsert(f.ctx, &domain.ApprovalRecord{Principal: "ghost", Status: domain.ApprovalPending, UpdatedAt: epoch})
	}))

	_, err := f.approvals.SetApproval(f.ctx, rootPrincipal, "ghost", domain.ApprovalApproved)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	records, err := f.approvals.ListApprovals(f.ctx, rootPrincipal)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.ApprovalPending, records[0].Status)
}
