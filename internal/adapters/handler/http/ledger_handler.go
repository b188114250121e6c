package http

import (
	"net/http"

	"github.com/vncsmyrnk/governance/internal/core/domain"
	"github.com/vncsmyrnk/governance/internal/core/ports"
)

type LedgerHandler struct {
	service ports.LedgerService
}

func NewLedgerHandler(service ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		service: service,
	}
}

type ledgerResponse struct {
	Owner          domain.AccountID  `json:"owner"`
	TotalProposals domain.ProposalID `json:"total_proposals"`
}

type meResponse struct {
	Account domain.AccountID `json:"account"`
	IsOwner bool             `json:"is_owner"`
}

// GetLedger godoc
// @Summary      Shows the ledger
// @Description  Returns the ledger owner and how many proposals have been created.
// @Tags         ledger
// @Produce      json
// @Success      200  {object}  ledgerResponse
// @Failure      503
// @Router       /api/ledger [get]
func (h *LedgerHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	owner, err := h.service.Owner(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	total, err := h.service.TotalProposals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ledgerResponse{Owner: owner, TotalProposals: total})
}

// GetMe godoc
// @Summary      Shows the authenticated caller
// @Description  Returns the account resolved from the access token and whether it owns the ledger.
// @Tags         ledger
// @Produce      json
// @Success      200  {object}  meResponse
// @Failure      401
// @Router       /api/me [get]
func (h *LedgerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing caller context", http.StatusUnauthorized)
		return
	}

	owner, err := h.service.Owner(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{Account: caller, IsOwner: caller == owner})
}

// Logout godoc
// @Summary      Logs the caller out
// @Description  Clears the access token cookie.
// @Tags         auth
// @Success      200
// @Router       /auth/logout [post]
func (h *LedgerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: accessTokenCookie, MaxAge: -1, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
