package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/livepoll/api/internal/core/domain"
)

type PollRepository interface {
	Save(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error)
	ListActive(ctx context.Context, limit, offset int) ([]*domain.Poll, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Poll, error)
	// Update persists the poll's mutable fields. When optionTexts is
	// non-nil the option set is replaced wholesale: options whose text is
	// absent from the list are removed, the rest upserted by text keeping
	// their ids, with positions taken from the list order.
	Update(ctx context.Context, poll *domain.Poll, optionTexts []string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type CreatePollInput struct {
	Title       string
	Description string
	IsActive    *bool
	ExpiresAt   *time.Time
	Options     []string
}

type UpdatePollInput struct {
	Title       *string
	Description *string
	IsActive    *bool
	ExpiresAt   *time.Time
	Options     []string
}

type ListPollsInput struct {
	Limit  int
	Offset int
}

type PollService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreatePollInput) (*domain.Poll, error)
	GetPoll(ctx context.Context, id string) (*domain.Poll, error)
	ListActivePolls(ctx context.Context, input ListPollsInput) ([]*domain.Poll, error)
	ListMyPolls(ctx context.Context, userID uuid.UUID, input ListPollsInput) ([]*domain.Poll, error)
	Update(ctx context.Context, userID, pollID uuid.UUID, input UpdatePollInput) (*domain.Poll, error)
	ToggleActive(ctx context.Context, userID, pollID uuid.UUID) (*domain.Poll, error)
	Delete(ctx context.Context, userID, pollID uuid.UUID) error
}
