package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/repository"
)

func TestAtomicallyRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	boom := errors.New("boom")

	err := store.Atomically(ctx, func(repos repository.Repositories) error {
		require.NoError(t, repos.Profiles().Create(ctx, &domain.UserProfile{Principal: "p", Role: domain.RolePatient}))
		require.NoError(t, repos.AuditLogs().Append(ctx, &domain.AuditLogEntry{ID: "1", Action: domain.AuditAssignRole}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = store.Read(ctx, func(repos repository.Repositories) error {
		_, err := repos.Profiles().Get(ctx, "p")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		n, err := repos.AuditLogs().Count(ctx, domain.AuditFilter{})
		require.NoError(t, err)
		assert.Zero(t, n)
		return nil
	})
	require.NoError(t, err)
}

func TestAtomicallyCommitsAndSequencesAudit(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	for i := 0; i < 3; i++ {
		err := store.Atomically(ctx, func(repos repository.Repositories) error {
			return repos.AuditLogs().Append(ctx, &domain.AuditLogEntry{Action: domain.AuditGrantAdmin, Timestamp: time.Now()})
		})
		require.NoError(t, err)
	}

	err := store.Read(ctx, func(repos repository.Repositories) error {
		entries, err := repos.AuditLogs().List(ctx, domain.AuditFilter{}, 0, 10)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.EqualValues(t, 3, entries[0].Seq)
		assert.EqualValues(t, 1, entries[2].Seq)

		page, err := repos.AuditLogs().List(ctx, domain.AuditFilter{}, 2, 10)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.EqualValues(t, 1, page[0].Seq)
		return nil
	})
	require.NoError(t, err)
}

func TestReadRejectsWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	err := store.Read(ctx, func(repos repository.Repositories) error {
		return repos.Approvals().Upsert(ctx, &domain.ApprovalRecord{Principal: "p", Status: domain.ApprovalPending})
	})
	assert.ErrorIs(t, err, errReadOnly)
}

func TestReturnedProfilesDoNotAliasState(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	expires := time.Now().Add(time.Hour)
	require.NoError(t, store.Atomically(ctx, func(repos repository.Repositories) error {
		return repos.Profiles().Create(ctx, &domain.UserProfile{Principal: "p", Role: domain.RoleAdmin, RoleExpiresAt: &expires})
	}))

	require.NoError(t, store.Read(ctx, func(repos repository.Repositories) error {
		p, err := repos.Profiles().Get(ctx, "p")
		require.NoError(t, err)
		p.Role = domain.RolePatient
		*p.RoleExpiresAt = time.Time{}
		return nil
	}))

	require.NoError(t, store.Read(ctx, func(repos repository.Repositories) error {
		p, err := repos.Profiles().Get(ctx, "p")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, p.Role)
		assert.True(t, expires.Equal(*p.RoleExpiresAt))
		return nil
	}))
}

func TestCallerTimestampsArePreserved(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	created := time.Date(2020, time.January, 2, 3, 4, 5, 0, time.UTC)
	updated := created.Add(48 * time.Hour)

	require.NoError(t, store.Atomically(ctx, func(repos repository.Repositories) error {
		if err := repos.Profiles().Create(ctx, &domain.UserProfile{Principal: "p", Role: domain.RolePatient, CreatedAt: created, UpdatedAt: created}); err != nil {
			return err
		}
		if err := repos.Profiles().Update(ctx, &domain.UserProfile{Principal: "p", Role: domain.RoleDoctor, UpdatedAt: updated}); err != nil {
			return err
		}
		if err := repos.Approvals().Upsert(ctx, &domain.ApprovalRecord{Principal: "p", Status: domain.ApprovalPending, UpdatedAt: updated}); err != nil {
			return err
		}
		appt := &domain.Appointment{Patient: "p", Doctor: "d", Status: domain.AppointmentPending, CreatedAt: created, UpdatedAt: created}
		if err := repos.Appointments().Create(ctx, appt); err != nil {
			return err
		}
		_, err := repos.Appointments().UpdateStatus(ctx, appt.ID, domain.AppointmentCompleted, updated)
		return err
	}))

	require.NoError(t, store.Read(ctx, func(repos repository.Repositories) error {
		p, err := repos.Profiles().Get(ctx, "p")
		require.NoError(t, err)
		assert.Equal(t, created, p.CreatedAt)
		assert.Equal(t, updated, p.UpdatedAt)

		record, err := repos.Approvals().Get(ctx, "p")
		require.NoError(t, err)
		assert.Equal(t, updated, record.UpdatedAt)

		appt, err := repos.Appointments().Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, created, appt.CreatedAt)
		assert.Equal(t, updated, appt.UpdatedAt)
		return nil
	}))
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewStore()
	err := store.Atomically(ctx, func(repository.Repositories) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
