package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/events"
	"github.com/spec-kit/care-access/internal/observability"
	"github.com/spec-kit/care-access/internal/repository/memory"
)

const (
	rootPrincipal  = "root"
	adminPrincipal = "admin-1"
)

var epoch = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) ofType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	ctx       context.Context
	clock     *fakeClock
	store     *memory.Store
	metrics   *observability.Metrics
	events    *recorder
	deps      Dependencies
	identity  *IdentityService
	lifecycle *LifecycleService
	approvals *ApprovalService
	audit     *AuditService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fakeClock{now: epoch}
	rec := &recorder{}
	dispatcher := events.NewInMemoryDispatcher()
	for _, et := range []events.EventType{
		events.EventRoleChanged,
		events.EventAdminExpired,
		events.EventApprovalChanged,
		events.EventDoctorVerified,
		events.EventDeviceReassigned,
		events.EventAppointmentStatus,
	} {
		dispatcher.Subscribe(et, rec.handle)
	}

	f := &fixture{
		ctx:     context.Background(),
		clock:   clock,
		store:   memory.NewStore(),
		metrics: observability.NewMetrics(),
		events:  rec,
	}
	f.deps = Dependencies{
		Store:      f.store,
		Dispatcher: dispatcher,
		Metrics:    f.metrics,
		Clock:      clock.Now,
	}
	f.identity = NewIdentityService(f.deps)
	f.lifecycle = NewLifecycleService(f.deps)
	f.approvals = NewApprovalService(f.deps)
	f.audit = NewAuditService(f.deps, 200)

	require.NoError(t, f.identity.SeedSuperAdmins(f.ctx, []string{rootPrincipal}))
	return f
}

// user saves a profile for principal with the given base role.
func (f *fixture) user(t *testing.T, principal string, base domain.Role) {
	t.Helper()
	_, err := f.identity.SaveCallerProfile(f.ctx, principal, ProfileInput{Name: principal, BaseRole: base})
	require.NoError(t, err)
}

// admin creates a permanent admin with a patient base role.
func (f *fixture) admin(t *testing.T, principal string) {
	t.Helper()
	f.user(t, principal, domain.RolePatient)
	require.NoError(t, f.lifecycle.PromoteToAdmin(f.ctx, rootPrincipal, principal))
}

func (f *fixture) approve(t *testing.T, principal string) {
	t.Helper()
	_, err := f.approvals.SetApproval(f.ctx, rootPrincipal, principal, domain.ApprovalApproved)
	require.NoError(t, err)
}

func (f *fixture) auditEntries(t *testing.T, action domain.AuditAction, target string) []domain.AuditLogEntry {
	t.Helper()
	page, err := f.audit.Query(f.ctx, rootPrincipal, AuditQuery{Limit: 200, Action: &action, TargetUser: &target})
	require.NoError(t, err)
	return page.Entries
}

func (f *fixture) auditTotal(t *testing.T) int64 {
	t.Helper()
	page, err := f.audit.Query(f.ctx, rootPrincipal, AuditQuery{Limit: 1})
	require.NoError(t, err)
	return page.Total
}
