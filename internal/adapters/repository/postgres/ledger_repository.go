package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vncsmyrnk/governance/internal/core/domain"
	"github.com/vncsmyrnk/governance/internal/core/ledger"
)

// ErrStaleState means the stored ledger moved on since it was loaded,
// which happens when two processes share one database.
var ErrStaleState = errors.New("stored ledger state changed concurrently")

const uniqueViolation = "23505"

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{
		db: db,
	}
}

func (r *LedgerRepository) Load(ctx context.Context) (ledger.Snapshot, bool, error) {
	var (
		snap   ledger.Snapshot
		owner  string
		nextID int64
	)
	err := r.db.QueryRowContext(ctx, `SELECT owner, next_proposal_id FROM ledger WHERE id = 1`).Scan(&owner, &nextID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Snapshot{}, false, nil
		}
		return ledger.Snapshot{}, false, fmt.Errorf("failed to get ledger: %w", err)
	}
	snap.Owner = domain.AccountID(owner)
	if snap.NextID, err = toProposalID(nextID); err != nil {
		return ledger.Snapshot{}, false, err
	}

	if snap.Proposals, err = r.ListProposals(ctx); err != nil {
		return ledger.Snapshot{}, false, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT proposal_id, voter FROM votes ORDER BY proposal_id, voter`)
	if err != nil {
		return ledger.Snapshot{}, false, fmt.Errorf("failed to get votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			proposalID int64
			voter      string
		)
		if err := rows.Scan(&proposalID, &voter); err != nil {
			return ledger.Snapshot{}, false, fmt.Errorf("failed to scan vote: %w", err)
		}
		id, err := toProposalID(proposalID)
		if err != nil {
			return ledger.Snapshot{}, false, err
		}
		snap.Votes = append(snap.Votes, domain.VoteKey{ProposalID: id, Voter: domain.AccountID(voter)})
	}
	if err := rows.Err(); err != nil {
		return ledger.Snapshot{}, false, fmt.Errorf("error iterating votes: %w", err)
	}

	return snap, true, nil
}

func (r *LedgerRepository) Initialize(ctx context.Context, owner domain.AccountID) error {
	query := `
		INSERT INTO ledger (id, owner, next_proposal_id)
		VALUES (1, $1, 0)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, string(owner)); err != nil {
		return fmt.Errorf("failed to insert ledger: %w", err)
	}
	return nil
}

func (r *LedgerRepository) Commit(ctx context.Context, change ledger.Change) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if change.Vote == nil {
		err = r.insertProposal(ctx, tx, change)
	} else {
		err = r.insertVote(ctx, tx, change)
	}
	if err != nil {
		return err
	}

	if err := r.insertEvent(ctx, tx, change); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *LedgerRepository) insertProposal(ctx context.Context, tx *sql.Tx, change ledger.Change) error {
	p := change.Proposal
	res, err := tx.ExecContext(ctx,
		`UPDATE ledger SET next_proposal_id = $1 WHERE id = 1 AND next_proposal_id = $2`,
		int64(change.NextID), int64(p.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to advance proposal counter: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to advance proposal counter: %w", err)
	} else if n != 1 {
		return ErrStaleState
	}

	query := `
		INSERT INTO proposals (id, title, votes_for, votes_against)
		VALUES ($1, $2, $3, $4)
	`
	_, err = tx.ExecContext(ctx, query, int64(p.ID), p.Title, int64(p.VotesFor), int64(p.VotesAgainst))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrStaleState
		}
		return fmt.Errorf("failed to insert proposal: %w", err)
	}
	return nil
}

func (r *LedgerRepository) insertVote(ctx context.Context, tx *sql.Tx, change ledger.Change) error {
	v := change.Vote
	_, err := tx.ExecContext(ctx,
		`INSERT INTO votes (proposal_id, voter, in_favor) VALUES ($1, $2, $3)`,
		int64(v.ProposalID), string(v.Voter), v.InFavor,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyVoted
		}
		return fmt.Errorf("failed to save vote: %w", err)
	}

	p := change.Proposal
	prevFor, prevAgainst := previousTally(change)
	res, err := tx.ExecContext(ctx, `
		UPDATE proposals
		SET votes_for = $2, votes_against = $3, updated_at = NOW()
		WHERE id = $1 AND votes_for = $4 AND votes_against = $5
	`, int64(p.ID), int64(p.VotesFor), int64(p.VotesAgainst), prevFor, prevAgainst)
	if err != nil {
		return fmt.Errorf("failed to update proposal tally: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to update proposal tally: %w", err)
	} else if n != 1 {
		return ErrStaleState
	}
	return nil
}

// previousTally is the stored tally a vote change was prepared against.
func previousTally(change ledger.Change) (int64, int64) {
	prevFor, prevAgainst := int64(change.Proposal.VotesFor), int64(change.Proposal.VotesAgainst)
	if change.Vote.InFavor {
		prevFor--
	} else {
		prevAgainst--
	}
	return prevFor, prevAgainst
}

func (r *LedgerRepository) insertEvent(ctx context.Context, tx *sql.Tx, change ledger.Change) error {
	payload, err := json.Marshal(change.Event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledger_events (id, name, proposal_id, payload) VALUES ($1, $2, $3, $4)`,
		uuid.New(), change.Event.EventName(), int64(change.Proposal.ID), string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (r *LedgerRepository) ListProposals(ctx context.Context) ([]domain.Proposal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, votes_for, votes_against
		FROM proposals
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []domain.Proposal
	for rows.Next() {
		var (
			id, votesFor, votesAgainst int64
			p                          domain.Proposal
		)
		if err := rows.Scan(&id, &p.Title, &votesFor, &votesAgainst); err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		if p.ID, err = toProposalID(id); err != nil {
			return nil, err
		}
		if p.VotesFor, err = toVotes(votesFor); err != nil {
			return nil, err
		}
		if p.VotesAgainst, err = toVotes(votesAgainst); err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proposals: %w", err)
	}
	return proposals, nil
}

func (r *LedgerRepository) CountVotes(ctx context.Context, id domain.ProposalID) (uint64, uint64, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE in_favor), COUNT(*) FILTER (WHERE NOT in_favor)
		FROM votes
		WHERE proposal_id = $1
	`
	var inFavor, against int64
	if err := r.db.QueryRowContext(ctx, query, int64(id)).Scan(&inFavor, &against); err != nil {
		return 0, 0, fmt.Errorf("failed to count votes for proposal %s: %w", id, err)
	}
	return uint64(inFavor), uint64(against), nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func toProposalID(v int64) (domain.ProposalID, error) {
	if v < 0 || v > math.MaxUint32 {
		return 0, fmt.Errorf("%w: proposal id %d out of range", domain.ErrCorruptState, v)
	}
	return domain.ProposalID(v), nil
}

func toVotes(v int64) (uint32, error) {
	if v < 0 || v > math.MaxUint32 {
		return 0, fmt.Errorf("%w: vote count %d out of range", domain.ErrCorruptState, v)
	}
	return uint32(v), nil
}
