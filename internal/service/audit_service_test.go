package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/care-access/internal/domain"
)

func TestAuditQueryPaginatesNewestFirst(t *testing.T) {
	f := newFixture(t)
	for _, p := range []string{"a", "b", "c"} {
		f.user(t, p, domain.RolePatient)
		require.NoError(t, f.lifecycle.GrantTemporaryAdmin(f.ctx, rootPrincipal, p, epoch.Add(time.Hour)))
	}

	all, err := f.audit.Query(f.ctx, rootPrincipal, AuditQuery{})
	require.NoError(t, err)
	assert.Equal(t, defaultAuditPageSize, all.Limit)
	require.EqualValues(t, 4, all.Total)
	for i := 1; i < len(all.Entries); i++ {
		assert.Greater(t, all.Entries[i-1].Seq, all.Entries[i].Seq)
	}
	assert.Equal(t, "c", *all.Entries[0].TargetUser)

	page, err := f.audit.Query(f.ctx, rootPrincipal, AuditQuery{Offset: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, all.Entries[1].ID, page.Entries[0].ID)
	assert.Equal(t, all.Entries[2].ID, page.Entries[1].ID)

	again, err := f.audit.Query(f.ctx, rootPrincipal, AuditQuery{Offset: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, page.Entries, again.Entries)
}

func TestAuditQueryFilters(t *testing.T) {
	f := newFixture(t)
	f.user(t, "a", domain.RolePatient)
	f.user(t, "b", domain.RolePatient)
	require.NoError(t, f.lifecycle.GrantTemporaryAdmin(f.ctx, rootPrincipal, "a", epoch.Add(time.Hour)))
	require.NoError(t, f.lifecycle.PromoteToAdmin(f.ctx, rootPrincipal, "b"))

	action := domain.AuditPromoteAdmin
	page, err := f.audit.Query(f.ctx, rootPrincipal, AuditQuery{Action: &action})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "b", *page.Entries[0].TargetUser)

	target := "a"
	page, err = f.audit.Query(f.ctx, rootPrincipal, AuditQuery{TargetUser: &target})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, domain.AuditGrantAdmin, page.Entries[0].Action)
}

func TestAuditQueryValidationAndAccess(t *testing.T) {
	f := newFixture(t)
	f.admin(t, adminPrincipal)

	_, err := f.audit.Query(f.ctx, rootPrincipal, AuditQuery{Offset: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.audit.Query(f.ctx, rootPrincipal, AuditQuery{Limit: -5})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.audit.Query(f.ctx, adminPrincipal, AuditQuery{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	capped := NewAuditService(f.deps, 10)
	page, err := capped.Query(f.ctx, rootPrincipal, AuditQuery{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 10, page.Limit)
}

func TestAuditEntriesCarryOrderedIDs(t *testing.T) {
	f := newFixture(t)
	f.user(t, "a", domain.RolePatient)
	require.NoError(t, f.lifecycle.PromoteToAdmin(f.ctx, rootPrincipal, "a"))
	require.NoError(t, f.lifecycle.RevokeAdmin(f.ctx, rootPrincipal, "a"))

	page, err := f.audit.Query(f.ctx, rootPrincipal, AuditQuery{})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(page.Entries), 2)
	assert.Greater(t, page.Entries[0].ID, page.Entries[1].ID)
	assert.Equal(t, domain.AuditRevokeAdmin, page.Entries[0].Action)
	assert.Equal(t, rootPrincipal, page.Entries[0].PerformedBy)
}
