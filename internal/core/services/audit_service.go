package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vncsmyrnk/governance/internal/core/domain"
	"github.com/vncsmyrnk/governance/internal/core/ports"
)

type auditService struct {
	repo ports.TallyRepository
}

func NewAuditService(repo ports.TallyRepository) ports.AuditService {
	return &auditService{
		repo: repo,
	}
}

// AuditTallies recounts the vote records of every proposal and returns the
// proposals whose stored counters disagree, ordered by id.
func (s *auditService) AuditTallies(ctx context.Context) ([]domain.TallyDiscrepancy, error) {
	proposals, err := s.repo.ListProposals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch all proposals: %w", err)
	}

	var (
		wg            sync.WaitGroup
		mu            sync.Mutex
		discrepancies []domain.TallyDiscrepancy
	)
	errChan := make(chan error, len(proposals))

	for _, p := range proposals {
		wg.Add(1)
		go func(p domain.Proposal) {
			defer wg.Done()
			inFavor, against, err := s.repo.CountVotes(ctx, p.ID)
			if err != nil {
				errChan <- fmt.Errorf("failed to count votes of proposal %s: %w", p.ID, err)
				return
			}
			if inFavor == uint64(p.VotesFor) && against == uint64(p.VotesAgainst) {
				return
			}
			mu.Lock()
			discrepancies = append(discrepancies, domain.TallyDiscrepancy{
				ProposalID:     p.ID,
				StoredFor:      uint64(p.VotesFor),
				StoredAgainst:  uint64(p.VotesAgainst),
				CountedFor:     inFavor,
				CountedAgainst: against,
			})
			mu.Unlock()
		}(p)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(discrepancies, func(i, j int) bool {
		return discrepancies[i].ProposalID < discrepancies[j].ProposalID
	})
	return discrepancies, nil
}
