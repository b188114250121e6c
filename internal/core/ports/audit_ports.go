package ports

import (
	"context"

	"github.com/vncsmyrnk/governance/internal/core/domain"
)

type TallyRepository interface {
	ListProposals(ctx context.Context) ([]domain.Proposal, error)
	CountVotes(ctx context.Context, id domain.ProposalID) (inFavor, against uint64, err error)
}

type AuditService interface {
	AuditTallies(ctx context.Context) ([]domain.TallyDiscrepancy, error)
}
