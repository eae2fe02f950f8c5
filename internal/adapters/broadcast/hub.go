// Package broadcast provides the in-process publish/subscribe bus behind
// the live-results and notification streams. Channels are named
// ("poll.<id>", "user.<id>"); delivery is best effort and publishing
// never blocks on a slow subscriber.
package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/livepoll/api/internal/core/domain"
	"github.com/livepoll/api/internal/core/ports"
)

const subscriberBuffer = 16

type Event struct {
	Channel   string    `json:"channel"`
	Name      string    `json:"event"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event
	logger      *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subscribers: make(map[string][]chan Event),
		logger:      logger,
	}
}

// Publish fans the event out to the channel's current subscribers. A
// subscriber whose buffer is full has the event dropped rather than
// stalling the publisher.
func (h *Hub) Publish(ctx context.Context, channel, event string, payload any) error {
	h.mu.RLock()
	subs := append([]chan Event(nil), h.subscribers[channel]...)
	h.mu.RUnlock()

	ev := Event{
		Channel:   channel,
		Name:      event,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- ev:
		default:
			h.logger.Warn("dropping event for slow subscriber", "channel", channel, "event", event)
		}
	}
	return nil
}

// Notify publishes a creator notification on the user's private channel.
func (h *Hub) Notify(ctx context.Context, userID uuid.UUID, notification domain.Notification) error {
	return h.Publish(ctx, ports.UserChannel(userID), "notification", notification)
}

// Subscribe registers a listener on the named channel. The returned stop
// function removes the subscription; events published afterwards are no
// longer delivered.
func (h *Hub) Subscribe(channel string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[channel] = append(h.subscribers[channel], ch)
	h.mu.Unlock()

	stop := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subscribers[channel]
		for i, sub := range subs {
			if sub == ch {
				h.subscribers[channel] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(h.subscribers[channel]) == 0 {
			delete(h.subscribers, channel)
		}
	}
	return ch, stop
}
