package domain

import "errors"

var (
	ErrUnauthorized     = errors.New("caller is not the ledger owner")
	ErrProposalNotFound = errors.New("proposal not found")
	ErrAlreadyVoted     = errors.New("caller has already voted on this proposal")
	ErrOverflow         = errors.New("counter overflow")

	ErrNotInitialized    = errors.New("ledger is not initialized")
	ErrInvalidProposalID = errors.New("invalid proposal id")
	ErrMissingIdentity   = errors.New("missing caller identity")
	ErrCorruptState      = errors.New("persisted ledger state is inconsistent")
)
