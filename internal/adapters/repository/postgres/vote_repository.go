package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/livepoll/api/internal/core/domain"
	"github.com/livepoll/api/internal/core/ports"
)

// queryer is satisfied by both *sql.DB and *sql.Tx so the statistics and
// lookup queries can run inside or outside a transaction.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteLedger {
	return &voteRepository{
		db: db,
	}
}

// RecordVote runs the duplicate check, the insert and the statistics
// query in one transaction. The check-then-insert sequence alone is racy
// under concurrent requests, so the votes table carries two partial
// unique indexes (one per identity class) and a violation of either is
// translated into domain.ErrAlreadyVoted.
func (r *voteRepository) RecordVote(ctx context.Context, vote *domain.Vote) (*domain.VoteStatistics, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	optionPollID, err := r.optionPoll(ctx, tx, vote.OptionID)
	if err != nil {
		return nil, err
	}
	if optionPollID != vote.PollID {
		return nil, domain.ErrInvalidOption
	}

	identity := domain.Identity{UserID: vote.UserID, IPAddress: vote.IPAddress}
	existing, err := r.findVote(ctx, tx, vote.PollID, identity)
	if err != nil && !errors.Is(err, domain.ErrVoteNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadyVoted
	}

	query := `
		INSERT INTO votes (id, poll_id, option_id, user_id, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err = tx.QueryRowContext(ctx, query,
		vote.ID, vote.PollID, vote.OptionID, vote.UserID, vote.IPAddress, nullableString(vote.UserAgent),
	).Scan(&vote.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyVoted
		}
		return nil, fmt.Errorf("failed to insert vote: %w", err)
	}

	statistics, err := r.statistics(ctx, tx, vote.PollID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return statistics, nil
}

func (r *voteRepository) FindVote(ctx context.Context, pollID uuid.UUID, identity domain.Identity) (*domain.Vote, error) {
	return r.findVote(ctx, r.db, pollID, identity)
}

func (r *voteRepository) Statistics(ctx context.Context, pollID uuid.UUID) (*domain.VoteStatistics, error) {
	return r.statistics(ctx, r.db, pollID)
}

// findVote applies the same identity-scoping rule as the uniqueness
// constraints: authenticated voters match on user id alone, anonymous
// voters on IP address with no user id.
func (r *voteRepository) findVote(ctx context.Context, q queryer, pollID uuid.UUID, identity domain.Identity) (*domain.Vote, error) {
	var (
		query string
		arg   any
	)
	if identity.Anonymous() {
		query = `
			SELECT id, poll_id, option_id, user_id, ip_address, COALESCE(user_agent, ''), created_at
			FROM votes
			WHERE poll_id = $1 AND user_id IS NULL AND ip_address = $2
		`
		arg = identity.IPAddress
	} else {
		query = `
			SELECT id, poll_id, option_id, user_id, ip_address, COALESCE(user_agent, ''), created_at
			FROM votes
			WHERE poll_id = $1 AND user_id = $2
		`
		arg = *identity.UserID
	}

	var vote domain.Vote
	err := q.QueryRowContext(ctx, query, pollID, arg).Scan(
		&vote.ID, &vote.PollID, &vote.OptionID, &vote.UserID, &vote.IPAddress, &vote.UserAgent, &vote.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to find vote: %w", err)
	}
	return &vote, nil
}

// statistics counts votes per option straight from the ledger, including
// options without votes, in the poll's stored display order.
func (r *voteRepository) statistics(ctx context.Context, q queryer, pollID uuid.UUID) (*domain.VoteStatistics, error) {
	query := `
		SELECT o.id, o.text, COUNT(v.id)
		FROM poll_options o
		LEFT JOIN votes v ON v.option_id = o.id
		WHERE o.poll_id = $1 AND o.deleted_at IS NULL
		GROUP BY o.id, o.text, o.position, o.created_at
		ORDER BY o.position, o.created_at
	`
	rows, err := q.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	defer rows.Close()

	var options []domain.PollOption
	counts := make(map[uuid.UUID]int64)
	for rows.Next() {
		var opt domain.PollOption
		var count int64
		if err := rows.Scan(&opt.ID, &opt.Text, &count); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		opt.PollID = pollID
		options = append(options, opt)
		counts[opt.ID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vote counts: %w", err)
	}

	return domain.NewVoteStatistics(options, counts), nil
}

func (r *voteRepository) optionPoll(ctx context.Context, q queryer, optionID uuid.UUID) (uuid.UUID, error) {
	var pollID uuid.UUID
	err := q.QueryRowContext(ctx,
		`SELECT poll_id FROM poll_options WHERE id = $1 AND deleted_at IS NULL`, optionID,
	).Scan(&pollID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, domain.ErrInvalidOption
		}
		return uuid.Nil, fmt.Errorf("failed to resolve option: %w", err)
	}
	return pollID, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
