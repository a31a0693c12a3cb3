package worker

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/care-access/internal/config"
	"github.com/spec-kit/care-access/internal/events"
	"github.com/spec-kit/care-access/internal/service"
)

func TestStartNotificationWorkerDeliversInBackground(t *testing.T) {
	received := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- string(body)
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	dispatcher := events.NewInMemoryDispatcher()
	StartNotificationWorker(ctx, service.NewNotificationService(dispatcher, nil, config.NotificationConfig{WebhookURL: srv.URL}, nil))

	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventAppointmentStatus, Subject: "appt-7"}))

	select {
	case body := <-received:
		assert.Contains(t, body, `"type":"appointment_status_overridden"`)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not deliver")
	}
}

func TestStartNotificationWorkerIgnoresNilService(t *testing.T) {
	assert.NotPanics(t, func() { StartNotificationWorker(context.Background(), nil) })
}
