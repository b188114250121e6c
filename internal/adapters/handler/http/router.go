package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "github.com/vncsmyrnk/governance/docs"
	"github.com/vncsmyrnk/governance/internal/core/ports"
)

type Routes struct {
	Ledger    *LedgerHandler
	Proposals *ProposalHandler
	Votes     *VoteHandler
	Verifier  ports.TokenVerifier
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

func NewHandler(routes Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	authenticated := RequireCaller(routes.Verifier)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})
		r.Get("/ledger", routes.Ledger.GetLedger)
		r.With(authenticated).Get("/me", routes.Ledger.GetMe)

		r.Route("/proposals", func(r chi.Router) {
			r.Get("/", routes.Proposals.ListProposals)
			r.With(authenticated).Post("/", routes.Proposals.CreateProposal)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", routes.Proposals.GetProposal)
				r.With(authenticated).Post("/votes", routes.Votes.Vote)
				r.With(authenticated).Get("/my-vote", routes.Votes.MyVote)
			})
		})
	})

	r.Post("/auth/logout", routes.Ledger.Logout)

	if routes.Metrics != nil {
		r.Handle("/metrics", routes.Metrics)
	}
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}
