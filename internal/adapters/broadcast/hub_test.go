package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livepoll/api/internal/core/domain"
	"github.com/livepoll/api/internal/core/ports"
)

func TestPublishReachesSubscriber(t *testing.T) {
	hub := NewHub(nil)
	events, stop := hub.Subscribe("poll.abc")
	defer stop()

	err := hub.Publish(context.Background(), "poll.abc", "vote.cast", map[string]int{"total": 1})
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, "poll.abc", ev.Channel)
		assert.Equal(t, "vote.cast", ev.Name)
	case <-time.After(time.Second):
		t.Fatal("expected event, got none")
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	hub := NewHub(nil)

	err := hub.Publish(context.Background(), "poll.nobody", "vote.cast", nil)
	assert.NoError(t, err)
}

func TestPublishIsScopedToChannel(t *testing.T) {
	hub := NewHub(nil)
	events, stop := hub.Subscribe("poll.a")
	defer stop()

	err := hub.Publish(context.Background(), "poll.b", "vote.cast", nil)
	require.NoError(t, err)

	select {
	case <-events:
		t.Fatal("subscriber received event from another channel")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStopRemovesSubscription(t *testing.T) {
	hub := NewHub(nil)
	events, stop := hub.Subscribe("poll.abc")
	stop()

	err := hub.Publish(context.Background(), "poll.abc", "vote.cast", nil)
	require.NoError(t, err)

	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("stopped subscriber received event")
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub(nil)
	_, stop := hub.Subscribe("poll.abc")
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// never drained: overflow past the buffer must drop, not block
		for i := 0; i < subscriberBuffer*2; i++ {
			_ = hub.Publish(context.Background(), "poll.abc", "vote.cast", i)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
}

func TestNotifyUsesUserChannel(t *testing.T) {
	hub := NewHub(nil)
	userID := uuid.New()
	events, stop := hub.Subscribe(ports.UserChannel(userID))
	defer stop()

	notification := domain.Notification{ID: uuid.New(), Message: "New vote received on poll: x"}
	err := hub.Notify(context.Background(), userID, notification)
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, "notification", ev.Name)
		payload, ok := ev.Payload.(domain.Notification)
		require.True(t, ok)
		assert.Equal(t, notification.ID, payload.ID)
	case <-time.After(time.Second):
		t.Fatal("expected notification, got none")
	}
}
