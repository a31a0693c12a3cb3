package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/events"
	"github.com/spec-kit/care-access/internal/ids"
	"github.com/spec-kit/care-access/internal/observability"
	"github.com/spec-kit/care-access/internal/repository"
)

// Dependencies bundles collaborators shared by the access services.
type Dependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	// Clock defaults to time.Now.
	Clock func() time.Time
}

type core struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	clock      func() time.Time
}

func newCore(deps Dependencies) *core {
	c := &core{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	return c
}

// unit is one serialised unit of work. Audit counts and events collected here
// are only acted upon after the store commits.
type unit struct {
	repository.Repositories
	now     time.Time
	events  []events.Event
	audited []domain.AuditAction
	expired int
}

func (c *core) atomically(ctx context.Context, fn func(*unit) error) error {
	var u *unit
	err := c.store.Atomically(ctx, func(repos repository.Repositories) error {
		u = &unit{Repositories: repos, now: c.clock().UTC()}
		return fn(u)
	})
	if err != nil {
		return err
	}
	c.afterCommit(ctx, u)
	return nil
}

func (c *core) afterCommit(ctx context.Context, u *unit) {
	for _, action := range u.audited {
		c.metrics.RecordAuditEntry(string(action))
	}
	for i := 0; i < u.expired; i++ {
		c.metrics.RecordAutoExpiration()
	}
	for _, event := range u.events {
		c.logger.Info("access event",
			zap.String("event_type", string(event.Type)),
			zap.String("subject", event.Subject),
			zap.String("actor", event.Actor))
		if c.dispatcher == nil {
			continue
		}
		if err := c.dispatcher.Publish(ctx, event); err != nil {
			c.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
}

func (c *core) audit(ctx context.Context, u *unit, action domain.AuditAction, performedBy string, target *string, metadata string) error {
	entry := &domain.AuditLogEntry{
		ID:          ids.NewSortable(u.now),
		Action:      action,
		PerformedBy: performedBy,
		TargetUser:  target,
		Timestamp:   u.now,
	}
	if metadata != "" {
		entry.Metadata = &metadata
	}
	if err := u.AuditLogs().Append(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	u.audited = append(u.audited, action)
	return nil
}

// createProfile stores a new profile stamped with the unit's clock.
func (u *unit) createProfile(ctx context.Context, p *domain.UserProfile) error {
	p.CreatedAt, p.UpdatedAt = u.now, u.now
	return u.Profiles().Create(ctx, p)
}

func (u *unit) saveProfile(ctx context.Context, p *domain.UserProfile) error {
	p.UpdatedAt = u.now
	return u.Profiles().Update(ctx, p)
}

func (u *unit) emit(eventType events.EventType, subject, actor string, payload interface{}) {
	u.events = append(u.events, events.Event{
		ID:        ids.NewRandom(),
		Type:      eventType,
		Subject:   subject,
		Actor:     actor,
		Timestamp: u.now,
		Payload:   payload,
	})
}

func ptr[T any](v T) *T {
	return &v
}
