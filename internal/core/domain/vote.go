package domain

// VoteKey is the membership fact "Voter has voted on ProposalID".
type VoteKey struct {
	ProposalID ProposalID
	Voter      AccountID
}

// VoteRecord is the stored form of a cast vote.
type VoteRecord struct {
	ProposalID ProposalID `json:"proposal_id"`
	Voter      AccountID  `json:"voter"`
	InFavor    bool       `json:"in_favor"`
}

func (v VoteRecord) Key() VoteKey {
	return VoteKey{ProposalID: v.ProposalID, Voter: v.Voter}
}
