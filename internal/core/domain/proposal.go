package domain

import "strconv"

// AccountID identifies a caller. It is opaque to the ledger.
type AccountID string

// ProposalID is assigned sequentially from 0 and never reused.
type ProposalID uint32

func (id ProposalID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseProposalID parses the decimal form used in URLs.
func ParseProposalID(s string) (ProposalID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, ErrInvalidProposalID
	}
	return ProposalID(v), nil
}

type Proposal struct {
	ID           ProposalID `json:"id"`
	Title        string     `json:"title"`
	VotesFor     uint32     `json:"votes_for"`
	VotesAgainst uint32     `json:"votes_against"`
}

// TallyDiscrepancy reports a proposal whose stored counters disagree with
// the vote records kept for it.
type TallyDiscrepancy struct {
	ProposalID     ProposalID `json:"proposal_id"`
	StoredFor      uint64     `json:"stored_for"`
	StoredAgainst  uint64     `json:"stored_against"`
	CountedFor     uint64     `json:"counted_for"`
	CountedAgainst uint64     `json:"counted_against"`
}
