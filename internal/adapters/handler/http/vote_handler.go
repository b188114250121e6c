package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/governance/internal/core/domain"
	"github.com/vncsmyrnk/governance/internal/core/ports"
)

type VoteHandler struct {
	service ports.LedgerService
}

func NewVoteHandler(service ports.LedgerService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type voteRequest struct {
	InFavor *bool `json:"in_favor"`
}

type myVoteResponse struct {
	Voted bool `json:"voted"`
}

// Vote godoc
// @Summary      Votes on a proposal
// @Description  Records the caller's vote. Each account votes at most once per proposal.
// @Tags         votes
// @Accept       json
// @Param        id    path  int          true  "Proposal id"
// @Param        vote  body  voteRequest  true  "Vote choice"
// @Success      201
// @Failure      400
// @Failure      401
// @Failure      404
// @Failure      409
// @Failure      422
// @Router       /api/proposals/{id}/votes [post]
func (h *VoteHandler) Vote(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseProposalID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InFavor == nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	caller, ok := callerFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing caller context", http.StatusUnauthorized)
		return
	}

	if err := h.service.Vote(r.Context(), caller, id, *req.InFavor); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// MyVote godoc
// @Summary      Shows whether the caller voted
// @Description  Reports if the authenticated caller has already voted on the proposal.
// @Tags         votes
// @Produce      json
// @Param        id   path      int  true  "Proposal id"
// @Success      200  {object}  myVoteResponse
// @Failure      400
// @Failure      401
// @Failure      404
// @Router       /api/proposals/{id}/my-vote [get]
func (h *VoteHandler) MyVote(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseProposalID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	caller, ok := callerFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing caller context", http.StatusUnauthorized)
		return
	}

	voted, err := h.service.HasVoted(r.Context(), id, caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, myVoteResponse{Voted: voted})
}
