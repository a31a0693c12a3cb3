package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/care-access/internal/config"
	"github.com/spec-kit/care-access/internal/events"
)

const (
	webhookTimeout   = 5 * time.Second
	defaultQueueSize = 256
)

// ErrNotificationQueueFull is returned when an event arrives while the
// delivery queue is saturated. The event is dropped.
var ErrNotificationQueueFull = errors.New("notification queue full")

// NotificationService fans committed access events out to the portal
// gateways: a Redis pub/sub channel and an optional webhook. Handlers only
// enqueue; Run delivers off the request path.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	redis      *redis.Client
	queue      chan events.Event
}

// NewNotificationService creates the service. A nil redis client disables the
// pub/sub fan-out.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig, client *redis.Client) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		redis:      client,
		queue:      make(chan events.Event, size),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRoleChanged, n.handleRoleChanged)
	n.dispatcher.Subscribe(events.EventAdminExpired, n.handleAdminExpired)
	n.dispatcher.Subscribe(events.EventApprovalChanged, n.enqueue)
	n.dispatcher.Subscribe(events.EventDoctorVerified, n.enqueue)
	n.dispatcher.Subscribe(events.EventDeviceReassigned, n.enqueue)
	n.dispatcher.Subscribe(events.EventAppointmentStatus, n.enqueue)
}

// Run delivers queued events until ctx is done. Delivery failures are logged
// and do not stop the loop.
func (n *NotificationService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-n.queue:
			if err := n.Deliver(ctx, event); err != nil {
				n.logger.Warn("access event delivery failed",
					zap.String("event_type", string(event.Type)),
					zap.String("subject", event.Subject),
					zap.Error(err))
			}
		}
	}
}

func (n *NotificationService) handleRoleChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("RoleChanged", zap.String("principal", event.Subject), zap.Any("payload", event.Payload))
	return n.enqueue(ctx, event)
}

func (n *NotificationService) handleAdminExpired(ctx context.Context, event events.Event) error {
	n.logger.Info("AdminExpired", zap.String("principal", event.Subject), zap.Any("payload", event.Payload))
	return n.enqueue(ctx, event)
}

func (n *NotificationService) enqueue(_ context.Context, event events.Event) error {
	select {
	case n.queue <- event:
		return nil
	default:
		return fmt.Errorf("%w: dropped %s event for %s", ErrNotificationQueueFull, event.Type, event.Subject)
	}
}

// Deliver sends one event to every configured gateway.
func (n *NotificationService) Deliver(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	return errors.Join(n.publishRedis(ctx, event, body), n.sendWebhook(event, body))
}

func (n *NotificationService) publishRedis(ctx context.Context, event events.Event, body []byte) error {
	if n.redis == nil || strings.TrimSpace(n.cfg.RedisChannel) == "" {
		return nil
	}
	if err := n.redis.Publish(ctx, n.cfg.RedisChannel, body).Err(); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	n.logger.Debug("published access event",
		zap.String("channel", n.cfg.RedisChannel),
		zap.String("event_type", string(event.Type)),
		zap.String("subject", event.Subject))
	return nil
}

func (n *NotificationService) sendWebhook(event events.Event, body []byte) error {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return nil
	}
	agent := fiber.Post(n.cfg.WebhookURL).
		Body(body).
		ContentType(fiber.MIMEApplicationJSON).
		Timeout(webhookTimeout)
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("webhook %s event: %w", event.Type, err)
	}
	status, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("webhook %s event: %w", event.Type, errors.Join(errs...))
	}
	if status >= fiber.StatusBadRequest {
		return fmt.Errorf("webhook %s event: status %d", event.Type, status)
	}
	n.logger.Debug("sent access event webhook",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)),
		zap.Int("status", status))
	return nil
}
