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

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryPoll := `
		INSERT INTO polls (id, user_id, title, description, is_active, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, queryPoll,
		poll.ID, poll.UserID, poll.Title, poll.Description, poll.IsActive, poll.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	queryOption := `
		INSERT INTO poll_options (id, poll_id, text, position)
		VALUES ($1, $2, $3, $4)
	`
	stmt, err := tx.PrepareContext(ctx, queryOption)
	if err != nil {
		return fmt.Errorf("failed to prepare option statement: %w", err)
	}
	defer stmt.Close()

	for _, opt := range poll.Options {
		_, err = stmt.ExecContext(ctx, opt.ID, opt.PollID, opt.Text, opt.Position)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	queryPoll := `
		SELECT p.id, p.user_id, p.title, p.description, p.is_active, p.expires_at,
		       p.created_at, p.updated_at,
		       (SELECT COUNT(*) FROM votes v WHERE v.poll_id = p.id)
		FROM polls p
		WHERE p.id = $1 AND p.deleted_at IS NULL
	`

	var poll domain.Poll
	err := r.db.QueryRowContext(ctx, queryPoll, id).Scan(
		&poll.ID, &poll.UserID, &poll.Title, &poll.Description, &poll.IsActive, &poll.ExpiresAt,
		&poll.CreatedAt, &poll.UpdatedAt, &poll.TotalVotes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	options, err := r.fetchOptions(ctx, poll.ID)
	if err != nil {
		return nil, err
	}
	poll.Options = options

	return &poll, nil
}

func (r *pollRepository) ListActive(ctx context.Context, limit, offset int) ([]*domain.Poll, error) {
	query := `
		SELECT p.id, p.user_id, p.title, p.description, p.is_active, p.expires_at,
		       p.created_at, p.updated_at,
		       (SELECT COUNT(*) FROM votes v WHERE v.poll_id = p.id)
		FROM polls p
		WHERE p.deleted_at IS NULL
		  AND p.is_active = TRUE
		  AND (p.expires_at IS NULL OR p.expires_at > NOW())
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	return r.scanPolls(ctx, rows)
}

func (r *pollRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Poll, error) {
	query := `
		SELECT p.id, p.user_id, p.title, p.description, p.is_active, p.expires_at,
		       p.created_at, p.updated_at,
		       (SELECT COUNT(*) FROM votes v WHERE v.poll_id = p.id)
		FROM polls p
		WHERE p.deleted_at IS NULL AND p.user_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list user polls: %w", err)
	}
	defer rows.Close()

	return r.scanPolls(ctx, rows)
}

// Update persists the poll's fields and, when optionTexts is non-nil,
// replaces the option set: options whose text is absent are soft-deleted
// (their votes stop counting), surviving texts keep their option id and
// get the new position, new texts get fresh ids.
func (r *pollRepository) Update(ctx context.Context, poll *domain.Poll, optionTexts []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryPoll := `
		UPDATE polls
		SET title = $2, description = $3, is_active = $4, expires_at = $5, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	_, err = tx.ExecContext(ctx, queryPoll,
		poll.ID, poll.Title, poll.Description, poll.IsActive, poll.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update poll: %w", err)
	}

	if optionTexts != nil {
		if err := r.replaceOptions(ctx, tx, poll.ID, optionTexts); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *pollRepository) replaceOptions(ctx context.Context, tx *sql.Tx, pollID uuid.UUID, texts []string) error {
	queryDelete := `
		UPDATE poll_options
		SET deleted_at = NOW()
		WHERE poll_id = $1 AND deleted_at IS NULL AND NOT (text = ANY($2))
	`
	if _, err := tx.ExecContext(ctx, queryDelete, pollID, pq.Array(texts)); err != nil {
		return fmt.Errorf("failed to remove options: %w", err)
	}

	queryUpsert := `
		INSERT INTO poll_options (id, poll_id, text, position)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (poll_id, text) WHERE deleted_at IS NULL
		DO UPDATE SET position = EXCLUDED.position
	`
	stmt, err := tx.PrepareContext(ctx, queryUpsert)
	if err != nil {
		return fmt.Errorf("failed to prepare option upsert: %w", err)
	}
	defer stmt.Close()

	for i, text := range texts {
		if _, err := stmt.ExecContext(ctx, uuid.New(), pollID, text, i); err != nil {
			return fmt.Errorf("failed to upsert option: %w", err)
		}
	}
	return nil
}

func (r *pollRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE polls SET is_active = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("failed to set poll active flag: %w", err)
	}
	return nil
}

func (r *pollRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE polls SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	return nil
}

func (r *pollRepository) scanPolls(ctx context.Context, rows *sql.Rows) ([]*domain.Poll, error) {
	var polls []*domain.Poll
	for rows.Next() {
		var poll domain.Poll
		err := rows.Scan(
			&poll.ID, &poll.UserID, &poll.Title, &poll.Description, &poll.IsActive, &poll.ExpiresAt,
			&poll.CreatedAt, &poll.UpdatedAt, &poll.TotalVotes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}

		options, err := r.fetchOptions(ctx, poll.ID)
		if err != nil {
			return nil, err
		}
		poll.Options = options

		polls = append(polls, &poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	return polls, nil
}

func (r *pollRepository) fetchOptions(ctx context.Context, pollID uuid.UUID) ([]domain.PollOption, error) {
	queryOptions := `
		SELECT id, poll_id, text, position, created_at
		FROM poll_options
		WHERE poll_id = $1 AND deleted_at IS NULL
		ORDER BY position, created_at
	`
	rows, err := r.db.QueryContext(ctx, queryOptions, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get poll options: %w", err)
	}
	defer rows.Close()

	var options []domain.PollOption
	for rows.Next() {
		var opt domain.PollOption
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Text, &opt.Position, &opt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options: %w", err)
	}
	return options, nil
}
