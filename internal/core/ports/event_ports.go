package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/livepoll/api/internal/core/domain"
)

// EventPublisher publishes an event on a named channel with best-effort
// delivery. Implementations must not block the caller on slow consumers.
type EventPublisher interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

// NotificationDispatcher delivers a notification on a user's private
// channel, independent of the public poll channels.
type NotificationDispatcher interface {
	Notify(ctx context.Context, userID uuid.UUID, notification domain.Notification) error
}

// VoteCastEvent is the payload broadcast on a poll's public channel after
// a vote commits.
type VoteCastEvent struct {
	Statistics *domain.VoteStatistics `json:"statistics"`
	PollID     uuid.UUID              `json:"poll_id"`
	VoteID     uuid.UUID              `json:"vote_id"`
	Timestamp  time.Time              `json:"timestamp"`
}

const EventVoteCast = "vote.cast"

// PollChannel names the public channel carrying a poll's live results.
func PollChannel(pollID uuid.UUID) string {
	return "poll." + pollID.String()
}

// UserChannel names a user's private notification channel.
func UserChannel(userID uuid.UUID) string {
	return "user." + userID.String()
}
