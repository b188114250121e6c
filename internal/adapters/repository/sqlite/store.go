// Package sqlite provides a SQLite-backed ledger repository.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/governance/internal/core/domain"
	"github.com/vncsmyrnk/governance/internal/core/ledger"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// ErrStaleState means the stored ledger moved on since it was loaded.
var ErrStaleState = errors.New("stored ledger state changed concurrently")

// Store persists ledger state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite ledger store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// a single writer keeps transactions from tripping over SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Load(ctx context.Context) (ledger.Snapshot, bool, error) {
	var (
		owner  string
		nextID int64
	)
	err := s.sqlDB.QueryRowContext(ctx, `SELECT owner, next_proposal_id FROM ledger WHERE id = 1`).Scan(&owner, &nextID)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Snapshot{}, false, nil
	}
	if err != nil {
		return ledger.Snapshot{}, false, fmt.Errorf("get ledger: %w", err)
	}

	snap := ledger.Snapshot{Owner: domain.AccountID(owner)}
	if snap.NextID, err = toProposalID(nextID); err != nil {
		return ledger.Snapshot{}, false, err
	}
	if snap.Proposals, err = s.ListProposals(ctx); err != nil {
		return ledger.Snapshot{}, false, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT proposal_id, voter FROM votes ORDER BY proposal_id, voter`)
	if err != nil {
		return ledger.Snapshot{}, false, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			proposalID int64
			voter      string
		)
		if err := rows.Scan(&proposalID, &voter); err != nil {
			return ledger.Snapshot{}, false, fmt.Errorf("scan vote: %w", err)
		}
		id, err := toProposalID(proposalID)
		if err != nil {
			return ledger.Snapshot{}, false, err
		}
		snap.Votes = append(snap.Votes, domain.VoteKey{ProposalID: id, Voter: domain.AccountID(voter)})
	}
	if err := rows.Err(); err != nil {
		return ledger.Snapshot{}, false, fmt.Errorf("iterate votes: %w", err)
	}
	return snap, true, nil
}

func (s *Store) Initialize(ctx context.Context, owner domain.AccountID) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT OR IGNORE INTO ledger (id, owner, next_proposal_id, created_at) VALUES (1, ?, 0, ?)`,
		string(owner), toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert ledger: %w", err)
	}
	return nil
}

func (s *Store) Commit(ctx context.Context, change ledger.Change) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := toMillis(time.Now())
	p := change.Proposal
	if change.Vote == nil {
		res, err := tx.ExecContext(ctx,
			`UPDATE ledger SET next_proposal_id = ? WHERE id = 1 AND next_proposal_id = ?`,
			int64(change.NextID), int64(p.ID),
		)
		if err != nil {
			return fmt.Errorf("advance proposal counter: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("advance proposal counter: %w", err)
		} else if n != 1 {
			return ErrStaleState
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO proposals (id, title, votes_for, votes_against, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			int64(p.ID), p.Title, int64(p.VotesFor), int64(p.VotesAgainst), now, now,
		); err != nil {
			if isConstraintError(err) {
				return ErrStaleState
			}
			return fmt.Errorf("insert proposal: %w", err)
		}
	} else {
		v := change.Vote
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO votes (proposal_id, voter, in_favor, created_at) VALUES (?, ?, ?, ?)`,
			int64(v.ProposalID), string(v.Voter), v.InFavor, now,
		); err != nil {
			if isConstraintError(err) {
				return domain.ErrAlreadyVoted
			}
			return fmt.Errorf("insert vote: %w", err)
		}
		prevFor, prevAgainst := int64(p.VotesFor), int64(p.VotesAgainst)
		if v.InFavor {
			prevFor--
		} else {
			prevAgainst--
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE proposals SET votes_for = ?, votes_against = ?, updated_at = ?
			WHERE id = ? AND votes_for = ? AND votes_against = ?`,
			int64(p.VotesFor), int64(p.VotesAgainst), now, int64(p.ID), prevFor, prevAgainst,
		)
		if err != nil {
			return fmt.Errorf("update proposal tally: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("update proposal tally: %w", err)
		} else if n != 1 {
			return ErrStaleState
		}
	}

	payload, err := json.Marshal(change.Event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_events (id, name, proposal_id, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), change.Event.EventName(), int64(p.ID), string(payload), now,
	); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) ListProposals(ctx context.Context) ([]domain.Proposal, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id, title, votes_for, votes_against FROM proposals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []domain.Proposal
	for rows.Next() {
		var (
			id, votesFor, votesAgainst int64
			p                          domain.Proposal
		)
		if err := rows.Scan(&id, &p.Title, &votesFor, &votesAgainst); err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		if p.ID, err = toProposalID(id); err != nil {
			return nil, err
		}
		if votesFor < 0 || votesFor > math.MaxUint32 || votesAgainst < 0 || votesAgainst > math.MaxUint32 {
			return nil, fmt.Errorf("%w: tally of proposal %s out of range", domain.ErrCorruptState, p.ID)
		}
		p.VotesFor, p.VotesAgainst = uint32(votesFor), uint32(votesAgainst)
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate proposals: %w", err)
	}
	return proposals, nil
}

func (s *Store) CountVotes(ctx context.Context, id domain.ProposalID) (uint64, uint64, error) {
	var inFavor, against int64
	err := s.sqlDB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(in_favor = 1), 0), COALESCE(SUM(in_favor = 0), 0)
		FROM votes
		WHERE proposal_id = ?
	`, int64(id)).Scan(&inFavor, &against)
	if err != nil {
		return 0, 0, fmt.Errorf("count votes for proposal %s: %w", id, err)
	}
	return uint64(inFavor), uint64(against), nil
}

func isConstraintError(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}

func toProposalID(v int64) (domain.ProposalID, error) {
	if v < 0 || v > math.MaxUint32 {
		return 0, fmt.Errorf("%w: proposal id %d out of range", domain.ErrCorruptState, v)
	}
	return domain.ProposalID(v), nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}
