package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PollVoteCount struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Votes int64     `json:"votes"`
}

type DashboardStats struct {
	TotalPolls    int64            `json:"total_polls"`
	ActivePolls   int64            `json:"active_polls"`
	TotalVotes    int64            `json:"total_votes"`
	VotesPerPoll  []PollVoteCount  `json:"votes_per_poll"`
	VotesOverTime map[string]int64 `json:"votes_over_time"`
}

type AnalyticsRepository interface {
	CountPolls(ctx context.Context, userID uuid.UUID) (total, active int64, err error)
	CountVotes(ctx context.Context, userID uuid.UUID) (int64, error)
	TopPollsByVotes(ctx context.Context, userID uuid.UUID, limit int) ([]PollVoteCount, error)
	// VotesPerDay returns vote counts for the user's polls keyed by date
	// (YYYY-MM-DD) since the given time. Days without votes are absent.
	VotesPerDay(ctx context.Context, userID uuid.UUID, since time.Time) (map[string]int64, error)
}

type AnalyticsService interface {
	Dashboard(ctx context.Context, userID uuid.UUID) (*DashboardStats, error)
}
