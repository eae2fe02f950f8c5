package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/livepoll/api/internal/core/ports"
)

const votesOverTimeDays = 7

type analyticsService struct {
	repo ports.AnalyticsRepository
}

func NewAnalyticsService(repo ports.AnalyticsRepository) ports.AnalyticsService {
	return &analyticsService{
		repo: repo,
	}
}

func (s *analyticsService) Dashboard(ctx context.Context, userID uuid.UUID) (*ports.DashboardStats, error) {
	total, active, err := s.repo.CountPolls(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count polls: %w", err)
	}

	votes, err := s.repo.CountVotes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}

	topPolls, err := s.repo.TopPollsByVotes(ctx, userID, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to rank polls: %w", err)
	}

	now := time.Now()
	since := now.AddDate(0, 0, -(votesOverTimeDays - 1))
	perDay, err := s.repo.VotesPerDay(ctx, userID, since.Truncate(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to count votes per day: %w", err)
	}

	// Zero-fill days without votes so charts get a continuous series.
	overTime := make(map[string]int64, votesOverTimeDays)
	for i := 0; i < votesOverTimeDays; i++ {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		overTime[date] = perDay[date]
	}

	return &ports.DashboardStats{
		TotalPolls:    total,
		ActivePolls:   active,
		TotalVotes:    votes,
		VotesPerPoll:  topPolls,
		VotesOverTime: overTime,
	}, nil
}
