package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is the payload delivered on a creator's private channel
// when someone votes on one of their polls.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	PollID    uuid.UUID `json:"poll_id"`
	PollTitle string    `json:"poll_title"`
	VoteID    uuid.UUID `json:"vote_id"`
	CreatedAt time.Time `json:"created_at"`
}
