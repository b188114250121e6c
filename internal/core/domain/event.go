package domain

const (
	EventProposalCreated = "ProposalCreated"
	EventVoteCast        = "VoteCast"
)

// Event is a notification emitted after a successful state change.
type Event interface {
	EventName() string
}

type ProposalCreated struct {
	ID    ProposalID `json:"id"`
	Title string     `json:"title"`
}

func (ProposalCreated) EventName() string { return EventProposalCreated }

type VoteCast struct {
	ProposalID ProposalID `json:"proposal_id"`
	Voter      AccountID  `json:"voter"`
	InFavor    bool       `json:"in_favor"`
}

func (VoteCast) EventName() string { return EventVoteCast }
