// Package ledger holds the proposal and vote state machine.
//
// A Ledger is not safe for concurrent use. Callers serialize access and
// every operation either fully applies or leaves the ledger untouched.
package ledger

import (
	"math"

	"github.com/vncsmyrnk/governance/internal/core/domain"
)

type Ledger struct {
	owner     domain.AccountID
	proposals map[domain.ProposalID]*domain.Proposal
	voted     map[domain.VoteKey]struct{}
	nextID    domain.ProposalID
}

// New initializes a ledger owned by the deploying caller.
func New(owner domain.AccountID) *Ledger {
	return &Ledger{
		owner:     owner,
		proposals: make(map[domain.ProposalID]*domain.Proposal),
		voted:     make(map[domain.VoteKey]struct{}),
	}
}

func (l *Ledger) Owner() domain.AccountID {
	return l.owner
}

// IsOwner reports whether caller may create proposals.
func (l *Ledger) IsOwner(caller domain.AccountID) bool {
	return caller == l.owner
}

// Change is a fully validated state transition produced by PrepareProposal
// or PrepareVote. Proposal holds the record as it stands after the call.
type Change struct {
	Proposal domain.Proposal
	NextID   domain.ProposalID
	Vote     *domain.VoteRecord
	Event    domain.Event
}

// PrepareProposal runs the creation checks and returns the resulting change
// without touching the ledger.
func (l *Ledger) PrepareProposal(caller domain.AccountID, title string) (Change, error) {
	if !l.IsOwner(caller) {
		return Change{}, domain.ErrUnauthorized
	}
	if l.nextID == math.MaxUint32 {
		return Change{}, domain.ErrOverflow
	}

	id := l.nextID
	return Change{
		Proposal: domain.Proposal{ID: id, Title: title},
		NextID:   id + 1,
		Event:    domain.ProposalCreated{ID: id, Title: title},
	}, nil
}

// PrepareVote runs the tally checks in order: existence, prior vote,
// counter range.
func (l *Ledger) PrepareVote(caller domain.AccountID, id domain.ProposalID, inFavor bool) (Change, error) {
	current, ok := l.proposals[id]
	if !ok {
		return Change{}, domain.ErrProposalNotFound
	}
	if _, ok := l.voted[domain.VoteKey{ProposalID: id, Voter: caller}]; ok {
		return Change{}, domain.ErrAlreadyVoted
	}

	updated := *current
	var err error
	if inFavor {
		updated.VotesFor, err = checkedIncrement(updated.VotesFor)
	} else {
		updated.VotesAgainst, err = checkedIncrement(updated.VotesAgainst)
	}
	if err != nil {
		return Change{}, err
	}

	return Change{
		Proposal: updated,
		NextID:   l.nextID,
		Vote:     &domain.VoteRecord{ProposalID: id, Voter: caller, InFavor: inFavor},
		Event:    domain.VoteCast{ProposalID: id, Voter: caller, InFavor: inFavor},
	}, nil
}

// Apply installs a change prepared by this ledger. No other call may run
// between the Prepare and the Apply.
func (l *Ledger) Apply(c Change) []domain.Event {
	p := c.Proposal
	l.proposals[p.ID] = &p
	l.nextID = c.NextID
	if c.Vote != nil {
		l.voted[c.Vote.Key()] = struct{}{}
	}
	return []domain.Event{c.Event}
}

func (l *Ledger) CreateProposal(caller domain.AccountID, title string) (domain.ProposalID, []domain.Event, error) {
	c, err := l.PrepareProposal(caller, title)
	if err != nil {
		return 0, nil, err
	}
	return c.Proposal.ID, l.Apply(c), nil
}

func (l *Ledger) Vote(caller domain.AccountID, id domain.ProposalID, inFavor bool) ([]domain.Event, error) {
	c, err := l.PrepareVote(caller, id, inFavor)
	if err != nil {
		return nil, err
	}
	return l.Apply(c), nil
}

func (l *Ledger) GetProposal(id domain.ProposalID) (domain.Proposal, error) {
	p, ok := l.proposals[id]
	if !ok {
		return domain.Proposal{}, domain.ErrProposalNotFound
	}
	return *p, nil
}

// TotalProposals is the number of proposals ever created, which is also
// the next id to be assigned.
func (l *Ledger) TotalProposals() domain.ProposalID {
	return l.nextID
}

func (l *Ledger) HasVoted(id domain.ProposalID, voter domain.AccountID) (bool, error) {
	if _, ok := l.proposals[id]; !ok {
		return false, domain.ErrProposalNotFound
	}
	_, ok := l.voted[domain.VoteKey{ProposalID: id, Voter: voter}]
	return ok, nil
}

// Proposals returns up to limit proposals in creation order, starting at
// offset. A non-positive limit returns everything after offset.
func (l *Ledger) Proposals(offset, limit int) []domain.Proposal {
	total := int64(l.nextID)
	start := int64(offset)
	if start < 0 {
		start = 0
	}
	if start >= total {
		return nil
	}
	end := total
	if limit > 0 && start+int64(limit) < end {
		end = start + int64(limit)
	}

	out := make([]domain.Proposal, 0, end-start)
	for i := start; i < end; i++ {
		if p, ok := l.proposals[domain.ProposalID(i)]; ok {
			out = append(out, *p)
		}
	}
	return out
}

func checkedIncrement(v uint32) (uint32, error) {
	if v == math.MaxUint32 {
		return v, domain.ErrOverflow
	}
	return v + 1, nil
}
