package domain

import "errors"

var (
	ErrPollNotFound   = errors.New("poll not found")
	ErrPollNotVotable = errors.New("poll is not active or has expired")
	ErrInvalidPollID  = errors.New("invalid poll id")
	ErrInvalidOption  = errors.New("invalid option for this poll")
	ErrAlreadyVoted   = errors.New("identity has already voted in this poll")
	ErrVoteNotFound   = errors.New("vote not found")
	ErrNotPollOwner   = errors.New("poll belongs to another user")
)
