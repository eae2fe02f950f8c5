package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livepoll/api/internal/core/domain"
	"github.com/livepoll/api/internal/core/ports"
)

type recordingPollRepo struct {
	fakePollRepo
	saved       *domain.Poll
	updated     *domain.Poll
	updateTexts []string
	setActive   *bool
	deleted     bool
}

func (r *recordingPollRepo) Save(ctx context.Context, poll *domain.Poll) error {
	r.saved = poll
	return nil
}

func (r *recordingPollRepo) Update(ctx context.Context, poll *domain.Poll, optionTexts []string) error {
	r.updated = poll
	r.updateTexts = optionTexts
	return nil
}

func (r *recordingPollRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.setActive = &active
	return nil
}

func (r *recordingPollRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	r.deleted = true
	return nil
}

func TestCreatePoll(t *testing.T) {
	repo := &recordingPollRepo{}
	svc := NewPollService(repo)
	userID := uuid.New()

	poll, err := svc.Create(context.Background(), userID, ports.CreatePollInput{
		Title:       "Lunch?",
		Description: "Team lunch options",
		Options:     []string{"Pizza", "", "Sushi"},
	})
	require.NoError(t, err)

	assert.Equal(t, userID, *poll.UserID)
	assert.True(t, poll.IsActive)
	require.Len(t, poll.Options, 2)
	assert.Equal(t, "Pizza", poll.Options[0].Text)
	assert.Equal(t, 0, poll.Options[0].Position)
	assert.Equal(t, "Sushi", poll.Options[1].Text)
	assert.Equal(t, 1, poll.Options[1].Position)
	assert.Equal(t, poll, repo.saved)
}

func TestCreatePollValidation(t *testing.T) {
	svc := NewPollService(&recordingPollRepo{})
	userID := uuid.New()

	tests := []struct {
		name  string
		input ports.CreatePollInput
	}{
		{"missing title", ports.CreatePollInput{Options: []string{"A", "B"}}},
		{"single option", ports.CreatePollInput{Title: "t", Options: []string{"A"}}},
		{"only empty options", ports.CreatePollInput{Title: "t", Options: []string{"", ""}}},
		{"duplicate texts", ports.CreatePollInput{Title: "t", Options: []string{"A", "A"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), userID, tt.input)
			assert.Error(t, err)
		})
	}
}

func TestUpdatePollOwnership(t *testing.T) {
	owner := uuid.New()
	poll := votablePoll(&owner)
	repo := &recordingPollRepo{fakePollRepo: fakePollRepo{polls: map[uuid.UUID]*domain.Poll{poll.ID: poll}}}
	svc := NewPollService(repo)

	stranger := uuid.New()
	_, err := svc.Update(context.Background(), stranger, poll.ID, ports.UpdatePollInput{})
	assert.ErrorIs(t, err, domain.ErrNotPollOwner)

	err = svc.Delete(context.Background(), stranger, poll.ID)
	assert.ErrorIs(t, err, domain.ErrNotPollOwner)
	assert.False(t, repo.deleted)
}

func TestUpdatePollReplacesOptionTexts(t *testing.T) {
	owner := uuid.New()
	poll := votablePoll(&owner)
	repo := &recordingPollRepo{fakePollRepo: fakePollRepo{polls: map[uuid.UUID]*domain.Poll{poll.ID: poll}}}
	svc := NewPollService(repo)

	title := "Updated title"
	_, err := svc.Update(context.Background(), owner, poll.ID, ports.UpdatePollInput{
		Title:   &title,
		Options: []string{"Blue", "Green"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Updated title", repo.updated.Title)
	assert.Equal(t, []string{"Blue", "Green"}, repo.updateTexts)
}

func TestUpdatePollWithoutOptionsLeavesThemUntouched(t *testing.T) {
	owner := uuid.New()
	poll := votablePoll(&owner)
	repo := &recordingPollRepo{fakePollRepo: fakePollRepo{polls: map[uuid.UUID]*domain.Poll{poll.ID: poll}}}
	svc := NewPollService(repo)

	active := false
	_, err := svc.Update(context.Background(), owner, poll.ID, ports.UpdatePollInput{IsActive: &active})
	require.NoError(t, err)

	assert.Nil(t, repo.updateTexts)
	assert.False(t, repo.updated.IsActive)
}

func TestToggleActive(t *testing.T) {
	owner := uuid.New()
	poll := votablePoll(&owner)
	repo := &recordingPollRepo{fakePollRepo: fakePollRepo{polls: map[uuid.UUID]*domain.Poll{poll.ID: poll}}}
	svc := NewPollService(repo)

	updated, err := svc.ToggleActive(context.Background(), owner, poll.ID)
	require.NoError(t, err)

	require.NotNil(t, repo.setActive)
	assert.False(t, *repo.setActive)
	assert.False(t, updated.IsActive)
}

func TestGetPollInvalidID(t *testing.T) {
	svc := NewPollService(&recordingPollRepo{})

	_, err := svc.GetPoll(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrInvalidPollID)
}
