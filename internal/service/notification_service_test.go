package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/care-access/internal/config"
	"github.com/spec-kit/care-access/internal/domain"
	"github.com/spec-kit/care-access/internal/events"
)

func runNotifications(t *testing.T, svc *NotificationService) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	svc.RegisterHandlers()
	go svc.Run(ctx)
}

func TestNotificationPublishesToRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	sub := client.Subscribe(ctx, "access")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	dispatcher := events.NewInMemoryDispatcher()
	runNotifications(t, NewNotificationService(dispatcher, nil, config.NotificationConfig{RedisChannel: "access"}, client))

	event := events.Event{
		ID:        "evt-1",
		Type:      events.EventAdminExpired,
		Subject:   "pat",
		Actor:     domain.SystemPrincipal,
		Timestamp: epoch,
		Payload:   events.AdminExpiredPayload{ExpiredAt: epoch, RevertedTo: domain.RolePatient},
	}
	require.NoError(t, dispatcher.Publish(ctx, event))

	select {
	case msg := <-sub.Channel():
		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "admin_expired", got["type"])
		assert.Equal(t, "pat", got["subject"])
		payload := got["payload"].(map[string]any)
		assert.Equal(t, "patient", payload["reverted_to"])
	case <-time.After(2 * time.Second):
		t.Fatal("no message published")
	}
}

func TestNotificationReportsRedisFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	svc := NewNotificationService(nil, nil, config.NotificationConfig{RedisChannel: "access"}, client)
	err := svc.Deliver(context.Background(), events.Event{Type: events.EventRoleChanged, Subject: "pat"})
	assert.ErrorContains(t, err, "publish role_changed event")
}

func TestNotificationWebhook(t *testing.T) {
	received := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- body
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	dispatcher := events.NewInMemoryDispatcher()
	runNotifications(t, NewNotificationService(dispatcher, nil, config.NotificationConfig{WebhookURL: srv.URL}, nil))

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventDoctorVerified,
		Subject: "doc",
		Actor:   "admin-1",
	}))

	select {
	case body := <-received:
		assert.Contains(t, string(body), `"type":"doctor_verified"`)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook not called")
	}
}

func TestNotificationWebhookErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	svc := NewNotificationService(nil, nil, config.NotificationConfig{WebhookURL: srv.URL}, nil)
	err := svc.Deliver(context.Background(), events.Event{Type: events.EventApprovalChanged, Subject: "pat"})
	assert.ErrorContains(t, err, "status 500")
}

func TestNotificationHandlersDoNotWaitForDelivery(t *testing.T) {
	release := make(chan struct{})
	received := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		body, _ := io.ReadAll(r.Body)
		received <- string(body)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	unblock := func() {
		select {
		case <-release:
		default:
			close(release)
		}
	}
	t.Cleanup(unblock)

	dispatcher := events.NewInMemoryDispatcher()
	runNotifications(t, NewNotificationService(dispatcher, nil, config.NotificationConfig{WebhookURL: srv.URL}, nil))

	published := make(chan error, 1)
	go func() {
		published <- dispatcher.Publish(context.Background(), events.Event{Type: events.EventApprovalChanged, Subject: "pat"})
	}()
	select {
	case err := <-published:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("publish waited on the webhook")
	}

	unblock()
	select {
	case body := <-received:
		assert.Contains(t, body, `"subject":"pat"`)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook not called")
	}
}

func TestNotificationQueueFullDropsEvent(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, nil, config.NotificationConfig{QueueSize: 1}, nil)
	svc.RegisterHandlers()

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventDeviceReassigned, Subject: "dev-1"}))
	err := dispatcher.Publish(ctx, events.Event{Type: events.EventDeviceReassigned, Subject: "dev-2"})
	assert.ErrorIs(t, err, ErrNotificationQueueFull)
}
