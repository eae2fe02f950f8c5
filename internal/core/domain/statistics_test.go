package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func makeOptions(texts ...string) []PollOption {
	pollID := uuid.New()
	options := make([]PollOption, 0, len(texts))
	for i, text := range texts {
		options = append(options, PollOption{
			ID:       uuid.New(),
			PollID:   pollID,
			Text:     text,
			Position: i,
		})
	}
	return options
}

func TestNewVoteStatisticsNoVotes(t *testing.T) {
	options := makeOptions("Yes", "No")

	stats := NewVoteStatistics(options, map[uuid.UUID]int64{})

	assert.Equal(t, int64(0), stats.TotalVotes)
	assert.Len(t, stats.Options, 2)
	for _, opt := range stats.Options {
		assert.Equal(t, int64(0), opt.Votes)
		assert.Equal(t, 0.0, opt.Percentage)
	}
}

func TestNewVoteStatisticsSingleVote(t *testing.T) {
	options := makeOptions("O1", "O2")
	counts := map[uuid.UUID]int64{options[0].ID: 1}

	stats := NewVoteStatistics(options, counts)

	assert.Equal(t, int64(1), stats.TotalVotes)
	assert.Equal(t, "O1", stats.Options[0].Text)
	assert.Equal(t, int64(1), stats.Options[0].Votes)
	assert.Equal(t, 100.0, stats.Options[0].Percentage)
	assert.Equal(t, int64(0), stats.Options[1].Votes)
	assert.Equal(t, 0.0, stats.Options[1].Percentage)
}

func TestNewVoteStatisticsTwoThirds(t *testing.T) {
	options := makeOptions("O1", "O2")
	counts := map[uuid.UUID]int64{options[0].ID: 2, options[1].ID: 1}

	stats := NewVoteStatistics(options, counts)

	assert.Equal(t, int64(3), stats.TotalVotes)
	assert.Equal(t, 66.67, stats.Options[0].Percentage)
	assert.Equal(t, 33.33, stats.Options[1].Percentage)
}

func TestNewVoteStatisticsPreservesDisplayOrder(t *testing.T) {
	options := makeOptions("first", "second", "third")
	counts := map[uuid.UUID]int64{options[2].ID: 5}

	stats := NewVoteStatistics(options, counts)

	assert.Equal(t, "first", stats.Options[0].Text)
	assert.Equal(t, "second", stats.Options[1].Text)
	assert.Equal(t, "third", stats.Options[2].Text)
	assert.Equal(t, int64(5), stats.Options[2].Votes)
}

func TestNewVoteStatisticsPercentagesSumToRoughly100(t *testing.T) {
	options := makeOptions("a", "b", "c", "d", "e", "f", "g")
	counts := map[uuid.UUID]int64{}
	for i, opt := range options {
		counts[opt.ID] = int64(i + 1)
	}

	stats := NewVoteStatistics(options, counts)

	var sum float64
	var votes int64
	for _, opt := range stats.Options {
		sum += opt.Percentage
		votes += opt.Votes
	}
	assert.Equal(t, stats.TotalVotes, votes)
	assert.InDelta(t, 100.0, sum, 0.05)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(0, 0))
	assert.Equal(t, 0.0, Percentage(5, 0))
	assert.Equal(t, 100.0, Percentage(7, 7))
	assert.Equal(t, 50.0, Percentage(1, 2))
	assert.Equal(t, 33.33, Percentage(1, 3))
	assert.Equal(t, 66.67, Percentage(2, 3))
	assert.Equal(t, 16.67, Percentage(1, 6))
	assert.Equal(t, 12.5, Percentage(1, 8))
	// half-up at the second decimal: 1/1600 = 0.0625%
	assert.Equal(t, 0.06, Percentage(1, 1600))
}

func TestPollVotable(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name     string
		poll     Poll
		expected bool
	}{
		{"active without expiry", Poll{IsActive: true}, true},
		{"active not yet expired", Poll{IsActive: true, ExpiresAt: &future}, true},
		{"active but expired", Poll{IsActive: true, ExpiresAt: &past}, false},
		{"inactive", Poll{IsActive: false}, false},
		{"inactive with future expiry", Poll{IsActive: false, ExpiresAt: &future}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.poll.Votable())
		})
	}
}
