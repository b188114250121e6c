package ports

import (
	"context"

	"github.com/vncsmyrnk/governance/internal/core/domain"
	"github.com/vncsmyrnk/governance/internal/core/ledger"
)

// LedgerRepository is the durable side of the hosting environment.
type LedgerRepository interface {
	// Load returns the persisted state. found is false before Initialize.
	Load(ctx context.Context) (snap ledger.Snapshot, found bool, err error)
	Initialize(ctx context.Context, owner domain.AccountID) error
	// Commit persists a prepared change atomically, together with its event.
	Commit(ctx context.Context, change ledger.Change) error
}

type ListProposalsInput struct {
	Page int
}

type ProposalPage struct {
	Total     domain.ProposalID `json:"total"`
	Page      int               `json:"page"`
	Proposals []domain.Proposal `json:"proposals"`
}

type LedgerService interface {
	Initialize(ctx context.Context, deployer domain.AccountID) (domain.AccountID, error)
	Owner(ctx context.Context) (domain.AccountID, error)
	CreateProposal(ctx context.Context, caller domain.AccountID, title string) (domain.ProposalID, error)
	Vote(ctx context.Context, caller domain.AccountID, id domain.ProposalID, inFavor bool) error
	GetProposal(ctx context.Context, id domain.ProposalID) (domain.Proposal, error)
	TotalProposals(ctx context.Context) (domain.ProposalID, error)
	ListProposals(ctx context.Context, input ListProposalsInput) (ProposalPage, error)
	HasVoted(ctx context.Context, id domain.ProposalID, voter domain.AccountID) (bool, error)
}
