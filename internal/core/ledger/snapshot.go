package ledger

import (
	"fmt"
	"sort"

	"github.com/vncsmyrnk/governance/internal/core/domain"
)

// Snapshot is the persisted layout of a ledger.
type Snapshot struct {
	Owner     domain.AccountID
	NextID    domain.ProposalID
	Proposals []domain.Proposal
	Votes     []domain.VoteKey
}

// Snapshot copies the ledger state. Proposals are ordered by id.
func (l *Ledger) Snapshot() Snapshot {
	s := Snapshot{
		Owner:     l.owner,
		NextID:    l.nextID,
		Proposals: make([]domain.Proposal, 0, len(l.proposals)),
		Votes:     make([]domain.VoteKey, 0, len(l.voted)),
	}
	for _, p := range l.proposals {
		s.Proposals = append(s.Proposals, *p)
	}
	sort.Slice(s.Proposals, func(i, j int) bool { return s.Proposals[i].ID < s.Proposals[j].ID })
	for k := range l.voted {
		s.Votes = append(s.Votes, k)
	}
	sort.Slice(s.Votes, func(i, j int) bool {
		if s.Votes[i].ProposalID != s.Votes[j].ProposalID {
			return s.Votes[i].ProposalID < s.Votes[j].ProposalID
		}
		return s.Votes[i].Voter < s.Votes[j].Voter
	})
	return s
}

// Restore rebuilds a ledger from persisted state. Tally totals are not
// checked against vote records here; the audit service does that.
func Restore(s Snapshot) (*Ledger, error) {
	l := New(s.Owner)
	l.nextID = s.NextID

	for _, p := range s.Proposals {
		if p.ID >= s.NextID {
			return nil, fmt.Errorf("%w: proposal %s is beyond next id %s", domain.ErrCorruptState, p.ID, s.NextID)
		}
		if _, dup := l.proposals[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate proposal %s", domain.ErrCorruptState, p.ID)
		}
		p := p
		l.proposals[p.ID] = &p
	}
	if uint64(len(l.proposals)) != uint64(s.NextID) {
		return nil, fmt.Errorf("%w: %d proposals stored but next id is %s", domain.ErrCorruptState, len(l.proposals), s.NextID)
	}

	for _, v := range s.Votes {
		if _, ok := l.proposals[v.ProposalID]; !ok {
			return nil, fmt.Errorf("%w: vote by %q on unknown proposal %s", domain.ErrCorruptState, v.Voter, v.ProposalID)
		}
		if _, dup := l.voted[v]; dup {
			return nil, fmt.Errorf("%w: duplicate vote by %q on proposal %s", domain.ErrCorruptState, v.Voter, v.ProposalID)
		}
		l.voted[v] = struct{}{}
	}

	return l, nil
}
