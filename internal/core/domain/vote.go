package domain

import (
	"time"

	"github.com/google/uuid"
)

type Vote struct {
	ID        uuid.UUID  `json:"id"`
	PollID    uuid.UUID  `json:"poll_id"`
	OptionID  uuid.UUID  `json:"option_id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	IPAddress string     `json:"-"`
	UserAgent string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
}

// Identity is the voter-distinguishing key used for the one-vote rule.
// Authenticated voters are identified by user id alone; anonymous voters
// by IP address with no user id. Two voters sharing an IP where one is
// logged in and one is not are different identities.
type Identity struct {
	UserID    *uuid.UUID
	IPAddress string
}

// Anonymous reports whether the identity has no authenticated user.
func (i Identity) Anonymous() bool {
	return i.UserID == nil
}
