package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/governance/internal/core/domain"
	"github.com/vncsmyrnk/governance/internal/core/ports"
)

type ProposalHandler struct {
	service ports.LedgerService
}

func NewProposalHandler(service ports.LedgerService) *ProposalHandler {
	return &ProposalHandler{
		service: service,
	}
}

type createProposalRequest struct {
	Title string `json:"title"`
}

type createProposalResponse struct {
	ID domain.ProposalID `json:"id"`
}

// CreateProposal godoc
// @Summary      Creates a proposal
// @Description  Only the ledger owner may create proposals. Ids are assigned sequentially from 0.
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Param        proposal  body      createProposalRequest  true  "Proposal title"
// @Success      201       {object}  createProposalResponse
// @Failure      400
// @Failure      401
// @Failure      403
// @Failure      422
// @Router       /api/proposals [post]
func (h *ProposalHandler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing caller context", http.StatusUnauthorized)
		return
	}

	var req createProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id, err := h.service.CreateProposal(r.Context(), caller, req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createProposalResponse{ID: id})
}

// ListProposals godoc
// @Summary      Lists proposals
// @Description  Returns proposals in id order, a page at a time.
// @Tags         proposals
// @Produce      json
// @Param        page  query     int  false  "Page number, starting at 1"
// @Success      200   {object}  ports.ProposalPage
// @Failure      400
// @Router       /api/proposals [get]
func (h *ProposalHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	input := ports.ListProposalsInput{Page: 1}
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			http.Error(w, "invalid page", http.StatusBadRequest)
			return
		}
		input.Page = page
	}

	page, err := h.service.ListProposals(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetProposal godoc
// @Summary      Shows a proposal
// @Description  Returns the proposal title and its current tallies.
// @Tags         proposals
// @Produce      json
// @Param        id   path      int  true  "Proposal id"
// @Success      200  {object}  domain.Proposal
// @Failure      400
// @Failure      404
// @Router       /api/proposals/{id} [get]
func (h *ProposalHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseProposalID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	proposal, err := h.service.GetProposal(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}
