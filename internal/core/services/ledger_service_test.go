package services_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/governance/internal/adapters/notify"
	"github.com/vncsmyrnk/governance/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/governance/internal/core/domain"
	"github.com/vncsmyrnk/governance/internal/core/ledger"
	"github.com/vncsmyrnk/governance/internal/core/ports"
	"github.com/vncsmyrnk/governance/internal/core/services"
)

const (
	owner domain.AccountID = "owner"
	alice domain.AccountID = "alice"
)

var errStorage = errors.New("storage unavailable")

// flakyRepository fails commits while failing is set.
type flakyRepository struct {
	*memory.Store
	failing bool
}

func (r *flakyRepository) Commit(ctx context.Context, change ledger.Change) error {
	if r.failing {
		return errStorage
	}
	return r.Store.Commit(ctx, change)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, ...domain.Event) error {
	return errors.New("channel closed")
}

func newService(t *testing.T) (ports.LedgerService, *memory.Store, *notify.Recorder) {
	t.Helper()
	store := memory.NewStore()
	recorder := notify.NewRecorder()
	svc := services.NewLedgerService(store, recorder, nil)
	got, err := svc.Initialize(context.Background(), owner)
	require.NoError(t, err)
	require.Equal(t, owner, got)
	return svc, store, recorder
}

func TestServiceBeforeInitialize(t *testing.T) {
	svc := services.NewLedgerService(memory.NewStore(), nil, nil)
	ctx := context.Background()

	_, err := svc.CreateProposal(ctx, owner, "x")
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
	_, err = svc.TotalProposals(ctx)
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
	_, err = svc.Owner(ctx)
	assert.ErrorIs(t, err, domain.ErrNotInitialized)

	_, err = svc.Initialize(ctx, "")
	assert.ErrorIs(t, err, domain.ErrMissingIdentity)
}

func TestServiceScenario(t *testing.T) {
	svc, _, recorder := newService(t)
	ctx := context.Background()

	id, err := svc.CreateProposal(ctx, owner, "Upgrade X")
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalID(0), id)

	total, err := svc.TotalProposals(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalID(1), total)

	require.NoError(t, svc.Vote(ctx, alice, id, true))
	assert.ErrorIs(t, svc.Vote(ctx, alice, id, true), domain.ErrAlreadyVoted)

	p, err := svc.GetProposal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.Proposal{ID: 0, Title: "Upgrade X", VotesFor: 1}, p)

	voted, err := svc.HasVoted(ctx, id, alice)
	require.NoError(t, err)
	assert.True(t, voted)

	want := []domain.Event{
		domain.ProposalCreated{ID: 0, Title: "Upgrade X"},
		domain.VoteCast{ProposalID: 0, Voter: alice, InFavor: true},
	}
	assert.Equal(t, want, recorder.Events())
}

func TestServiceRejectionsEmitNothing(t *testing.T) {
	svc, _, recorder := newService(t)
	ctx := context.Background()

	_, err := svc.CreateProposal(ctx, alice, "X")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.ErrorIs(t, svc.Vote(ctx, alice, 99, false), domain.ErrProposalNotFound)
	_, err = svc.GetProposal(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrProposalNotFound)

	total, err := svc.TotalProposals(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalID(0), total)
	assert.Empty(t, recorder.Events())
}

func TestServiceCommitFailureLeavesStateUnchanged(t *testing.T) {
	repo := &flakyRepository{Store: memory.NewStore()}
	recorder := notify.NewRecorder()
	svc := services.NewLedgerService(repo, recorder, nil)
	ctx := context.Background()
	_, err := svc.Initialize(ctx, owner)
	require.NoError(t, err)

	id, err := svc.CreateProposal(ctx, owner, "a")
	require.NoError(t, err)

	repo.failing = true
	_, err = svc.CreateProposal(ctx, owner, "b")
	assert.ErrorIs(t, err, errStorage)
	assert.ErrorIs(t, svc.Vote(ctx, alice, id, true), errStorage)

	total, _ := svc.TotalProposals(ctx)
	assert.Equal(t, domain.ProposalID(1), total)
	p, _ := svc.GetProposal(ctx, id)
	assert.Zero(t, p.VotesFor)
	voted, _ := svc.HasVoted(ctx, id, alice)
	assert.False(t, voted)
	assert.Len(t, recorder.Events(), 1)

	// the failed vote was never cast, so it can be retried
	repo.failing = false
	require.NoError(t, svc.Vote(ctx, alice, id, true))
	next, err := svc.CreateProposal(ctx, owner, "b")
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalID(1), next)
}

func TestServicePublishFailureDoesNotFailCall(t *testing.T) {
	svc := services.NewLedgerService(memory.NewStore(), failingPublisher{}, nil)
	ctx := context.Background()
	_, err := svc.Initialize(ctx, owner)
	require.NoError(t, err)

	_, err = svc.CreateProposal(ctx, owner, "a")
	assert.NoError(t, err)
}

func TestServiceRestoresPersistedOwner(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	first := services.NewLedgerService(store, nil, nil)
	_, err := first.Initialize(ctx, owner)
	require.NoError(t, err)
	id, err := first.CreateProposal(ctx, owner, "kept")
	require.NoError(t, err)
	require.NoError(t, first.Vote(ctx, alice, id, false))

	second := services.NewLedgerService(store, nil, nil)
	got, err := second.Initialize(ctx, "someone-else")
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	_, err = second.CreateProposal(ctx, "someone-else", "nope")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.ErrorIs(t, second.Vote(ctx, alice, id, true), domain.ErrAlreadyVoted)

	p, err := second.GetProposal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.Proposal{ID: id, Title: "kept", VotesAgainst: 1}, p)

	again, err := second.Initialize(ctx, "ignored")
	require.NoError(t, err)
	assert.Equal(t, owner, again)
}

func TestServiceListProposals(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	for i := 0; i < services.DefaultPageSize+3; i++ {
		_, err := svc.CreateProposal(ctx, owner, "p")
		require.NoError(t, err)
	}

	first, err := svc.ListProposals(ctx, ports.ListProposalsInput{Page: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Page)
	assert.Len(t, first.Proposals, services.DefaultPageSize)
	assert.Equal(t, domain.ProposalID(services.DefaultPageSize+3), first.Total)

	second, err := svc.ListProposals(ctx, ports.ListProposalsInput{Page: 2})
	require.NoError(t, err)
	require.Len(t, second.Proposals, 3)
	assert.Equal(t, domain.ProposalID(services.DefaultPageSize), second.Proposals[0].ID)

	empty, err := svc.ListProposals(ctx, ports.ListProposalsInput{Page: 9})
	require.NoError(t, err)
	assert.NotNil(t, empty.Proposals)
	assert.Empty(t, empty.Proposals)
}

func TestServiceListProposalsHugePage(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.CreateProposal(ctx, owner, "p")
	require.NoError(t, err)

	for _, page := range []int{3, 461168601842738792, math.MaxInt} {
		got, err := svc.ListProposals(ctx, ports.ListProposalsInput{Page: page})
		require.NoError(t, err)
		assert.Equal(t, page, got.Page)
		assert.Empty(t, got.Proposals, "page %d", page)
	}
}
