package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/livepoll/api/internal/core/domain"
	"github.com/livepoll/api/internal/core/ports"
)

const (
	defaultPollLimit = 18
	maxPollLimit     = 100
)

type pollService struct {
	repo ports.PollRepository
}

func NewPollService(repo ports.PollRepository) ports.PollService {
	return &pollService{
		repo: repo,
	}
}

func (s *pollService) Create(ctx context.Context, userID uuid.UUID, input ports.CreatePollInput) (*domain.Poll, error) {
	if input.Title == "" {
		return nil, errors.New("title is required")
	}

	texts, err := normalizeOptionTexts(input.Options)
	if err != nil {
		return nil, err
	}

	pollID := uuid.New()
	now := time.Now()
	creator := userID

	poll := &domain.Poll{
		ID:          pollID,
		UserID:      &creator,
		Title:       input.Title,
		Description: input.Description,
		IsActive:    true,
		ExpiresAt:   input.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.IsActive != nil {
		poll.IsActive = *input.IsActive
	}

	for i, text := range texts {
		poll.Options = append(poll.Options, domain.PollOption{
			ID:        uuid.New(),
			PollID:    pollID,
			Text:      text,
			Position:  i,
			CreatedAt: now,
		})
	}

	if err := s.repo.Save(ctx, poll); err != nil {
		return nil, err
	}

	return poll, nil
}

func (s *pollService) GetPoll(ctx context.Context, id string) (*domain.Poll, error) {
	pollID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrInvalidPollID
	}

	return s.repo.GetByID(ctx, pollID)
}

func (s *pollService) ListActivePolls(ctx context.Context, input ports.ListPollsInput) ([]*domain.Poll, error) {
	limit, offset := clampPage(input)
	return s.repo.ListActive(ctx, limit, offset)
}

func (s *pollService) ListMyPolls(ctx context.Context, userID uuid.UUID, input ports.ListPollsInput) ([]*domain.Poll, error) {
	limit, offset := clampPage(input)
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *pollService) Update(ctx context.Context, userID, pollID uuid.UUID, input ports.UpdatePollInput) (*domain.Poll, error) {
	poll, err := s.ownedPoll(ctx, userID, pollID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, errors.New("title is required")
		}
		poll.Title = *input.Title
	}
	if input.Description != nil {
		poll.Description = *input.Description
	}
	if input.IsActive != nil {
		poll.IsActive = *input.IsActive
	}
	if input.ExpiresAt != nil {
		poll.ExpiresAt = input.ExpiresAt
	}

	var texts []string
	if input.Options != nil {
		texts, err = normalizeOptionTexts(input.Options)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, poll, texts); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, pollID)
}

func (s *pollService) ToggleActive(ctx context.Context, userID, pollID uuid.UUID) (*domain.Poll, error) {
	poll, err := s.ownedPoll(ctx, userID, pollID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetActive(ctx, pollID, !poll.IsActive); err != nil {
		return nil, err
	}

	poll.IsActive = !poll.IsActive
	return poll, nil
}

// Delete soft-deletes the poll. Votes keep referencing it; nothing is
// hard-deleted.
func (s *pollService) Delete(ctx context.Context, userID, pollID uuid.UUID) error {
	if _, err := s.ownedPoll(ctx, userID, pollID); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, pollID)
}

func (s *pollService) ownedPoll(ctx context.Context, userID, pollID uuid.UUID) (*domain.Poll, error) {
	poll, err := s.repo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if poll.UserID == nil || *poll.UserID != userID {
		return nil, domain.ErrNotPollOwner
	}
	return poll, nil
}

// normalizeOptionTexts drops empty entries and requires at least two
// options with unique texts.
func normalizeOptionTexts(options []string) ([]string, error) {
	texts := make([]string, 0, len(options))
	seen := make(map[string]struct{}, len(options))
	for _, text := range options {
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			return nil, errors.New("option texts must be unique")
		}
		seen[text] = struct{}{}
		texts = append(texts, text)
	}

	if len(texts) < 2 {
		return nil, errors.New("at least two options are required")
	}
	return texts, nil
}

func clampPage(input ports.ListPollsInput) (limit, offset int) {
	limit = input.Limit
	if limit <= 0 {
		limit = defaultPollLimit
	}
	if limit > maxPollLimit {
		limit = maxPollLimit
	}
	offset = input.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
