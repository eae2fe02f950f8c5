package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/livepoll/api/internal/core/domain"
	"github.com/livepoll/api/internal/core/ports"
)

type voteService struct {
	pollRepo ports.PollRepository
	ledger   ports.VoteLedger
	events   ports.EventPublisher
	notifier ports.NotificationDispatcher
	logger   *slog.Logger
}

func NewVoteService(
	pollRepo ports.PollRepository,
	ledger ports.VoteLedger,
	events ports.EventPublisher,
	notifier ports.NotificationDispatcher,
	logger *slog.Logger,
) ports.VoteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &voteService{
		pollRepo: pollRepo,
		ledger:   ledger,
		events:   events,
		notifier: notifier,
		logger:   logger,
	}
}

// Cast is the only mutating entry point for votes. Validation and the
// ledger write happen first; the broadcast and creator notification run
// only after the transaction has committed, so subscribers never see a
// vote that could still roll back. Dispatch failures are logged and
// swallowed since the vote is already durable.
func (s *voteService) Cast(ctx context.Context, input ports.CastVoteInput) (*ports.CastVoteResult, error) {
	poll, err := s.pollRepo.GetByID(ctx, input.PollID)
	if err != nil {
		return nil, err
	}

	if !poll.Votable() {
		return nil, domain.ErrPollNotVotable
	}
	if poll.Option(input.OptionID) == nil {
		return nil, domain.ErrInvalidOption
	}

	vote := &domain.Vote{
		ID:        uuid.New(),
		PollID:    input.PollID,
		OptionID:  input.OptionID,
		UserID:    input.Identity.UserID,
		IPAddress: input.Identity.IPAddress,
		UserAgent: input.UserAgent,
		CreatedAt: time.Now(),
	}

	statistics, err := s.ledger.RecordVote(ctx, vote)
	if err != nil {
		return nil, err
	}

	// The request context may already be canceled if the voter
	// disconnected; the vote is committed either way, so dispatch must
	// not be tied to it.
	s.dispatch(context.WithoutCancel(ctx), poll, vote, statistics)

	return &ports.CastVoteResult{Vote: vote, Statistics: statistics}, nil
}

func (s *voteService) dispatch(ctx context.Context, poll *domain.Poll, vote *domain.Vote, statistics *domain.VoteStatistics) {
	event := ports.VoteCastEvent{
		Statistics: statistics,
		PollID:     poll.ID,
		VoteID:     vote.ID,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, ports.PollChannel(poll.ID), ports.EventVoteCast, event); err != nil {
		s.logger.Error("failed to broadcast vote", "error", err, "poll_id", poll.ID, "vote_id", vote.ID)
	}

	if poll.UserID == nil {
		return
	}
	notification := domain.Notification{
		ID:        uuid.New(),
		Type:      "info",
		Status:    "success",
		Message:   fmt.Sprintf("New vote received on poll: %s", poll.Title),
		PollID:    poll.ID,
		PollTitle: poll.Title,
		VoteID:    vote.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.notifier.Notify(ctx, *poll.UserID, notification); err != nil {
		s.logger.Error("failed to notify poll creator", "error", err, "poll_id", poll.ID, "user_id", *poll.UserID)
	}
}

func (s *voteService) FindMyVote(ctx context.Context, pollID uuid.UUID, identity domain.Identity) (*domain.Vote, error) {
	if _, err := s.pollRepo.GetByID(ctx, pollID); err != nil {
		return nil, err
	}
	return s.ledger.FindVote(ctx, pollID, identity)
}

func (s *voteService) Statistics(ctx context.Context, pollID uuid.UUID) (*domain.VoteStatistics, error) {
	if _, err := s.pollRepo.GetByID(ctx, pollID); err != nil {
		return nil, err
	}
	return s.ledger.Statistics(ctx, pollID)
}
