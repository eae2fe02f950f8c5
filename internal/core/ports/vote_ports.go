package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/livepoll/api/internal/core/domain"
)

// VoteLedger is the append-only record of who voted for what.
type VoteLedger interface {
	// RecordVote inserts the vote and returns the statistics computed in
	// the same transaction, so the snapshot includes the new vote and
	// nothing that commits afterwards. It fails with
	// domain.ErrAlreadyVoted when the vote's identity already voted in
	// the poll, and with domain.ErrInvalidOption when the option does
	// not belong to the poll.
	RecordVote(ctx context.Context, vote *domain.Vote) (*domain.VoteStatistics, error)

	// FindVote looks up the identity's vote in a poll using the same
	// identity-scoping rule as the uniqueness check. Returns
	// domain.ErrVoteNotFound when the identity has not voted.
	FindVote(ctx context.Context, pollID uuid.UUID, identity domain.Identity) (*domain.Vote, error)

	// Statistics recomputes the poll's statistics from current ledger
	// state.
	Statistics(ctx context.Context, pollID uuid.UUID) (*domain.VoteStatistics, error)
}

type CastVoteInput struct {
	PollID    uuid.UUID
	OptionID  uuid.UUID
	Identity  domain.Identity
	UserAgent string
}

// CastVoteResult carries the created vote together with the statistics
// snapshot that was broadcast for it.
type CastVoteResult struct {
	Vote       *domain.Vote           `json:"vote"`
	Statistics *domain.VoteStatistics `json:"statistics"`
}

type VoteService interface {
	Cast(ctx context.Context, input CastVoteInput) (*CastVoteResult, error)
	FindMyVote(ctx context.Context, pollID uuid.UUID, identity domain.Identity) (*domain.Vote, error)
	Statistics(ctx context.Context, pollID uuid.UUID) (*domain.VoteStatistics, error)
}
