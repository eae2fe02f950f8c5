package domain

import (
	"time"

	"github.com/google/uuid"
)

type Poll struct {
	ID          uuid.UUID    `json:"id"`
	UserID      *uuid.UUID   `json:"user_id,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	IsActive    bool         `json:"is_active"`
	Options     []PollOption `json:"options"`
	TotalVotes  int64        `json:"total_votes"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	ExpiresAt   *time.Time   `json:"expires_at,omitempty"`
}

// Votable reports whether the poll currently accepts votes: it must be
// active and either have no expiry or expire in the future.
func (p *Poll) Votable() bool {
	if !p.IsActive {
		return false
	}
	return p.ExpiresAt == nil || p.ExpiresAt.After(time.Now())
}

// Option returns the poll's option with the given id, or nil when the id
// does not belong to this poll.
func (p *Poll) Option(id uuid.UUID) *PollOption {
	for i := range p.Options {
		if p.Options[i].ID == id {
			return &p.Options[i]
		}
	}
	return nil
}

type PollOption struct {
	ID        uuid.UUID `json:"id"`
	PollID    uuid.UUID `json:"poll_id"`
	Text      string    `json:"text"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
