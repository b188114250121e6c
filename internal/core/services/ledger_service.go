package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vncsmyrnk/governance/internal/core/domain"
	"github.com/vncsmyrnk/governance/internal/core/ledger"
	"github.com/vncsmyrnk/governance/internal/core/ports"
)

const DefaultPageSize = 20

// ledgerService hosts a single ledger. Calls are serialized so each one
// observes the state left by the previous one.
type ledgerService struct {
	mu        sync.Mutex
	repo      ports.LedgerRepository
	publisher ports.EventPublisher
	logger    *slog.Logger
	ledger    *ledger.Ledger
}

func NewLedgerService(repo ports.LedgerRepository, publisher ports.EventPublisher, logger *slog.Logger) ports.LedgerService {
	return &ledgerService{
		repo:      repo,
		publisher: publisher,
		logger:    resolveLogger(logger),
	}
}

// Initialize restores the persisted ledger or, on first start, records
// deployer as the owner. A stored owner always wins.
func (s *ledgerService) Initialize(ctx context.Context, deployer domain.AccountID) (domain.AccountID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ledger != nil {
		return s.ledger.Owner(), nil
	}

	snap, found, err := s.repo.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load ledger: %w", err)
	}

	if found {
		l, err := ledger.Restore(snap)
		if err != nil {
			return "", err
		}
		if deployer != "" && deployer != l.Owner() {
			s.logger.Warn("ledger already initialized, ignoring deployer", "owner", l.Owner(), "deployer", deployer)
		}
		s.ledger = l
		s.logger.Info("ledger restored", "owner", l.Owner(), "total_proposals", l.TotalProposals())
		return l.Owner(), nil
	}

	if deployer == "" {
		return "", domain.ErrMissingIdentity
	}
	if err := s.repo.Initialize(ctx, deployer); err != nil {
		return "", fmt.Errorf("failed to initialize ledger: %w", err)
	}
	s.ledger = ledger.New(deployer)
	s.logger.Info("ledger initialized", "owner", deployer)
	return deployer, nil
}

func (s *ledgerService) Owner(ctx context.Context) (domain.AccountID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.current()
	if err != nil {
		return "", err
	}
	return l.Owner(), nil
}

func (s *ledgerService) CreateProposal(ctx context.Context, caller domain.AccountID, title string) (domain.ProposalID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.current()
	if err != nil {
		return 0, err
	}

	change, err := l.PrepareProposal(caller, title)
	if err != nil {
		s.rejected("create_proposal", caller, err)
		return 0, err
	}
	if err := s.commit(ctx, l, change); err != nil {
		return 0, err
	}
	return change.Proposal.ID, nil
}

func (s *ledgerService) Vote(ctx context.Context, caller domain.AccountID, id domain.ProposalID, inFavor bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.current()
	if err != nil {
		return err
	}

	change, err := l.PrepareVote(caller, id, inFavor)
	if err != nil {
		s.rejected("vote", caller, err, "proposal_id", id)
		return err
	}
	return s.commit(ctx, l, change)
}

func (s *ledgerService) GetProposal(ctx context.Context, id domain.ProposalID) (domain.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.current()
	if err != nil {
		return domain.Proposal{}, err
	}
	return l.GetProposal(id)
}

func (s *ledgerService) TotalProposals(ctx context.Context) (domain.ProposalID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.current()
	if err != nil {
		return 0, err
	}
	return l.TotalProposals(), nil
}

func (s *ledgerService) ListProposals(ctx context.Context, input ports.ListProposalsInput) (ports.ProposalPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.current()
	if err != nil {
		return ports.ProposalPage{}, err
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	var proposals []domain.Proposal
	// pages past the last proposal are empty; checked before multiplying
	// so a huge page number cannot wrap the offset
	if uint64(page-1) < (uint64(l.TotalProposals())+DefaultPageSize-1)/DefaultPageSize {
		proposals = l.Proposals((page-1)*DefaultPageSize, DefaultPageSize)
	}
	if proposals == nil {
		proposals = []domain.Proposal{}
	}
	return ports.ProposalPage{
		Total:     l.TotalProposals(),
		Page:      page,
		Proposals: proposals,
	}, nil
}

func (s *ledgerService) HasVoted(ctx context.Context, id domain.ProposalID, voter domain.AccountID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.current()
	if err != nil {
		return false, err
	}
	return l.HasVoted(id, voter)
}

func (s *ledgerService) current() (*ledger.Ledger, error) {
	if s.ledger == nil {
		return nil, domain.ErrNotInitialized
	}
	return s.ledger, nil
}

// commit persists change before applying it in memory, so a storage
// failure leaves the ledger as it was.
func (s *ledgerService) commit(ctx context.Context, l *ledger.Ledger, change ledger.Change) error {
	if err := s.repo.Commit(ctx, change); err != nil {
		return fmt.Errorf("failed to commit %s: %w", change.Event.EventName(), err)
	}
	events := l.Apply(change)

	for _, e := range events {
		s.logger.Debug("ledger event", "event", e.EventName(), "proposal_id", change.Proposal.ID)
	}
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		// the event is already stored with the change
		s.logger.Warn("failed to publish ledger events", "error", err, "proposal_id", change.Proposal.ID)
	}
	return nil
}

func (s *ledgerService) rejected(op string, caller domain.AccountID, err error, attrs ...any) {
	args := append([]any{"operation", op, "caller", caller, "reason", errorKind(err)}, attrs...)
	s.logger.Info("ledger call rejected", args...)
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"
	case errors.Is(err, domain.ErrProposalNotFound):
		return "ProposalNotFound"
	case errors.Is(err, domain.ErrAlreadyVoted):
		return "AlreadyVoted"
	case errors.Is(err, domain.ErrOverflow):
		return "Overflow"
	default:
		return "Unknown"
	}
}
