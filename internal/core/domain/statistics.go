package domain

import (
	"math"

	"github.com/google/uuid"
)

// VoteStatistics is a read-side projection of a poll's ledger state. It is
// recomputed from the votes on every call, never cached.
type VoteStatistics struct {
	TotalVotes int64          `json:"total_votes"`
	Options    []OptionResult `json:"options"`
}

type OptionResult struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	Votes      int64     `json:"votes"`
	Percentage float64   `json:"percentage"`
}

// NewVoteStatistics builds the statistics for a poll from its options (in
// stored display order) and the vote count per option. Options with no
// votes are included with a zero count.
func NewVoteStatistics(options []PollOption, counts map[uuid.UUID]int64) *VoteStatistics {
	stats := &VoteStatistics{Options: make([]OptionResult, 0, len(options))}
	for _, opt := range options {
		stats.TotalVotes += counts[opt.ID]
	}

	for _, opt := range options {
		votes := counts[opt.ID]
		stats.Options = append(stats.Options, OptionResult{
			ID:         opt.ID,
			Text:       opt.Text,
			Votes:      votes,
			Percentage: Percentage(votes, stats.TotalVotes),
		})
	}
	return stats
}

// Percentage returns votes/total as a percentage rounded half-up to two
// decimal places, or 0 when total is zero.
func Percentage(votes, total int64) float64 {
	if total <= 0 {
		return 0
	}
	raw := float64(votes) / float64(total) * 100
	return math.Round(raw*100) / 100
}
