package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishInvokesAllHandlersOfType(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string
	d.Subscribe(EventRoleChanged, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.Subject)
		return errors.New("boom")
	})
	d.Subscribe(EventRoleChanged, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.Subject)
		return nil
	})
	d.Subscribe(EventAdminExpired, func(_ context.Context, e Event) error {
		got = append(got, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventRoleChanged, Subject: "p1"})

	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"first:p1", "second:p1"}, got)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventDoctorVerified}))
}
