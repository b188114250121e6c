package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/governance/internal/adapters/auth/jwt"
	httpadapter "github.com/vncsmyrnk/governance/internal/adapters/handler/http"
	"github.com/vncsmyrnk/governance/internal/adapters/metrics"
	"github.com/vncsmyrnk/governance/internal/adapters/notify"
	"github.com/vncsmyrnk/governance/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/governance/internal/core/domain"
	"github.com/vncsmyrnk/governance/internal/core/ports"
	"github.com/vncsmyrnk/governance/internal/core/services"
)

type testServer struct {
	handler   http.Handler
	authority *jwt.Authority
	recorder  *notify.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	reg := prometheus.NewRegistry()
	metricsPublisher, err := metrics.NewPublisher(reg)
	require.NoError(t, err)

	recorder := notify.NewRecorder()
	svc := services.NewLedgerService(memory.NewStore(), notify.Fanout{recorder, metricsPublisher}, nil)
	_, err = svc.Initialize(context.Background(), "owner")
	require.NoError(t, err)

	authority, err := jwt.NewAuthority("test-secret")
	require.NoError(t, err)

	handler := httpadapter.NewHandler(httpadapter.Routes{
		Ledger:    httpadapter.NewLedgerHandler(svc),
		Proposals: httpadapter.NewProposalHandler(svc),
		Votes:     httpadapter.NewVoteHandler(svc),
		Verifier:  authority,
		Metrics:   metrics.Handler(reg),
	})
	return &testServer{handler: handler, authority: authority, recorder: recorder}
}

func (s *testServer) do(t *testing.T, method, path string, caller domain.AccountID, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != "" {
		token, err := s.authority.Issue(caller, time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestWelcome(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "welcome", rec.Body.String())
}

func TestProposalLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/proposals", "owner", `{"title":"Upgrade X"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":0}`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/proposals/0/votes", "alice", `{"in_favor":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/proposals/0/votes", "bob", `{"in_favor":false}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/proposals/0", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		domain.Proposal{ID: 0, Title: "Upgrade X", VotesFor: 1, VotesAgainst: 1},
		decode[domain.Proposal](t, rec),
	)

	rec = s.do(t, http.MethodGet, "/api/ledger", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"owner":"owner","total_proposals":1}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/proposals/0/my-vote", "alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"voted":true}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/proposals/0/my-vote", "carol", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"voted":false}`, rec.Body.String())

	events := s.recorder.Events()
	require.Len(t, events, 3)
	assert.Equal(t, domain.ProposalCreated{ID: 0, Title: "Upgrade X"}, events[0])
	assert.Equal(t, domain.VoteCast{ProposalID: 0, Voter: "alice", InFavor: true}, events[1])
}

func TestCreateProposalErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		caller domain.AccountID
		body   string
		status int
	}{
		{"no identity", "", `{"title":"x"}`, http.StatusUnauthorized},
		{"not owner", "mallory", `{"title":"x"}`, http.StatusForbidden},
		{"bad body", "owner", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/proposals", tt.caller, tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	assert.Empty(t, s.recorder.Events())
}

func TestVoteErrors(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/proposals", "owner", `{"title":"p"}`).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/proposals/0/votes", "alice", `{"in_favor":true}`).Code)

	tests := []struct {
		name   string
		path   string
		caller domain.AccountID
		body   string
		status int
	}{
		{"no identity", "/api/proposals/0/votes", "", `{"in_favor":true}`, http.StatusUnauthorized},
		{"already voted", "/api/proposals/0/votes", "alice", `{"in_favor":true}`, http.StatusConflict},
		{"switch side", "/api/proposals/0/votes", "alice", `{"in_favor":false}`, http.StatusConflict},
		{"missing proposal", "/api/proposals/7/votes", "bob", `{"in_favor":true}`, http.StatusNotFound},
		{"bad id", "/api/proposals/abc/votes", "bob", `{"in_favor":true}`, http.StatusBadRequest},
		{"missing choice", "/api/proposals/0/votes", "bob", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, tt.path, tt.caller, tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	rec := s.do(t, http.MethodGet, "/api/proposals/0", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[domain.Proposal](t, rec)
	assert.Equal(t, uint32(1), p.VotesFor)
	assert.Equal(t, uint32(0), p.VotesAgainst)
}

func TestGetProposalErrors(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/proposals/0", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/proposals/-1", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/proposals/4294967296", "", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/proposals/0/my-vote", "alice", "").Code)
}

func TestListProposals(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < services.DefaultPageSize+1; i++ {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/proposals", "owner", `{"title":"p"}`).Code)
	}

	rec := s.do(t, http.MethodGet, "/api/proposals", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[ports.ProposalPage](t, rec)
	assert.Equal(t, domain.ProposalID(services.DefaultPageSize+1), page.Total)
	assert.Len(t, page.Proposals, services.DefaultPageSize)

	rec = s.do(t, http.MethodGet, "/api/proposals?page=2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[ports.ProposalPage](t, rec)
	require.Len(t, page.Proposals, 1)
	assert.Equal(t, domain.ProposalID(services.DefaultPageSize), page.Proposals[0].ID)

	rec = s.do(t, http.MethodGet, "/api/proposals?page=461168601842738792", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[ports.ProposalPage](t, rec).Proposals)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/proposals?page=0", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/proposals?page=x", "", "").Code)
}

func TestAccessTokenCookie(t *testing.T) {
	s := newTestServer(t)
	token, err := s.authority.Issue("owner", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"account":"owner","is_owner":true}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutExpiresCookie(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/auth/logout", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "access_token", cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/proposals", "owner", `{"title":"p"}`).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/proposals/0/votes", "alice", `{"in_favor":false}`).Code)

	rec := s.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "governance_proposals_created_total 1")
	assert.Contains(t, rec.Body.String(), `governance_votes_cast_total{choice="against"} 1`)
}

func TestUninitializedLedger(t *testing.T) {
	svc := services.NewLedgerService(memory.NewStore(), nil, nil)
	authority, err := jwt.NewAuthority("test-secret")
	require.NoError(t, err)
	handler := httpadapter.NewHandler(httpadapter.Routes{
		Ledger:    httpadapter.NewLedgerHandler(svc),
		Proposals: httpadapter.NewProposalHandler(svc),
		Votes:     httpadapter.NewVoteHandler(svc),
		Verifier:  authority,
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ledger", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
