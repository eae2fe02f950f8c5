package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/livepoll/api/internal/core/ports"
)

type analyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) ports.AnalyticsRepository {
	return &analyticsRepository{
		db: db,
	}
}

func (r *analyticsRepository) CountPolls(ctx context.Context, userID uuid.UUID) (int64, int64, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active AND (expires_at IS NULL OR expires_at > NOW()))
		FROM polls
		WHERE user_id = $1 AND deleted_at IS NULL
	`
	var total, active int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&total, &active); err != nil {
		return 0, 0, fmt.Errorf("failed to count polls: %w", err)
	}
	return total, active, nil
}

func (r *analyticsRepository) CountVotes(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM votes v
		JOIN polls p ON p.id = v.poll_id
		WHERE p.user_id = $1 AND p.deleted_at IS NULL
	`
	var total int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return total, nil
}

func (r *analyticsRepository) TopPollsByVotes(ctx context.Context, userID uuid.UUID, limit int) ([]ports.PollVoteCount, error) {
	query := `
		SELECT p.id, p.title, COUNT(v.id)
		FROM polls p
		LEFT JOIN votes v ON v.poll_id = p.id
		WHERE p.user_id = $1 AND p.deleted_at IS NULL
		GROUP BY p.id, p.title
		ORDER BY COUNT(v.id) DESC, p.created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank polls: %w", err)
	}
	defer rows.Close()

	counts := []ports.PollVoteCount{}
	for rows.Next() {
		var c ports.PollVoteCount
		if err := rows.Scan(&c.ID, &c.Title, &c.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan poll vote count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating poll vote counts: %w", err)
	}
	return counts, nil
}

func (r *analyticsRepository) VotesPerDay(ctx context.Context, userID uuid.UUID, since time.Time) (map[string]int64, error) {
	query := `
		SELECT TO_CHAR(v.created_at, 'YYYY-MM-DD'), COUNT(*)
		FROM votes v
		JOIN polls p ON p.id = v.poll_id
		WHERE p.user_id = $1 AND p.deleted_at IS NULL AND v.created_at >= $2
		GROUP BY 1
		ORDER BY 1
	`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes per day: %w", err)
	}
	defer rows.Close()

	perDay := make(map[string]int64)
	for rows.Next() {
		var date string
		var count int64
		if err := rows.Scan(&date, &count); err != nil {
			return nil, fmt.Errorf("failed to scan votes per day: %w", err)
		}
		perDay[date] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes per day: %w", err)
	}
	return perDay, nil
}
