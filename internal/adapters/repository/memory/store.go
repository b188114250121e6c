// Package memory keeps ledger state in process memory. State is lost on
// restart; it backs the default storage driver and tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/vncsmyrnk/governance/internal/core/domain"
	"github.com/vncsmyrnk/governance/internal/core/ledger"
)

var errNotInitialized = errors.New("memory store is not initialized")

type Store struct {
	mu          sync.RWMutex
	initialized bool
	owner       domain.AccountID
	nextID      domain.ProposalID
	proposals   map[domain.ProposalID]domain.Proposal
	votes       map[domain.VoteKey]domain.VoteRecord
	events      []domain.Event
}

func NewStore() *Store {
	return &Store{
		proposals: make(map[domain.ProposalID]domain.Proposal),
		votes:     make(map[domain.VoteKey]domain.VoteRecord),
	}
}

func (s *Store) Load(ctx context.Context) (ledger.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return ledger.Snapshot{}, false, nil
	}

	snap := ledger.Snapshot{
		Owner:     s.owner,
		NextID:    s.nextID,
		Proposals: make([]domain.Proposal, 0, len(s.proposals)),
		Votes:     make([]domain.VoteKey, 0, len(s.votes)),
	}
	for _, p := range s.proposals {
		snap.Proposals = append(snap.Proposals, p)
	}
	sort.Slice(snap.Proposals, func(i, j int) bool { return snap.Proposals[i].ID < snap.Proposals[j].ID })
	for k := range s.votes {
		snap.Votes = append(snap.Votes, k)
	}
	sort.Slice(snap.Votes, func(i, j int) bool {
		if snap.Votes[i].ProposalID != snap.Votes[j].ProposalID {
			return snap.Votes[i].ProposalID < snap.Votes[j].ProposalID
		}
		return snap.Votes[i].Voter < snap.Votes[j].Voter
	})
	return snap, true, nil
}

func (s *Store) Initialize(ctx context.Context, owner domain.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true
	s.owner = owner
	return nil
}

func (s *Store) Commit(ctx context.Context, change ledger.Change) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	if change.Vote != nil {
		key := change.Vote.Key()
		if _, ok := s.votes[key]; ok {
			return domain.ErrAlreadyVoted
		}
		s.votes[key] = *change.Vote
	}
	s.proposals[change.Proposal.ID] = change.Proposal
	s.nextID = change.NextID
	s.events = append(s.events, change.Event)
	return nil
}

func (s *Store) ListProposals(ctx context.Context) ([]domain.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Proposal, 0, len(s.proposals))
	for _, p := range s.proposals {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CountVotes(ctx context.Context, id domain.ProposalID) (uint64, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var inFavor, against uint64
	for k, v := range s.votes {
		if k.ProposalID != id {
			continue
		}
		if v.InFavor {
			inFavor++
		} else {
			against++
		}
	}
	return inFavor, against, nil
}
