// Package metrics exports ledger activity to Prometheus.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vncsmyrnk/governance/internal/core/domain"
)

const namespace = "governance"

// Publisher counts ledger events. It implements ports.EventPublisher.
type Publisher struct {
	proposalsCreated prometheus.Counter
	votesCast        *prometheus.CounterVec
}

func NewPublisher(reg prometheus.Registerer) (*Publisher, error) {
	p := &Publisher{
		proposalsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposals_created_total",
			Help:      "Number of proposals created.",
		}),
		votesCast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "Number of votes cast, by choice.",
		}, []string{"choice"}),
	}
	for _, c := range []prometheus.Collector{p.proposalsCreated, p.votesCast} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Publisher) Publish(ctx context.Context, events ...domain.Event) error {
	for _, e := range events {
		switch ev := e.(type) {
		case domain.ProposalCreated:
			p.proposalsCreated.Inc()
		case domain.VoteCast:
			p.votesCast.WithLabelValues(choice(ev.InFavor)).Inc()
		}
	}
	return nil
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func choice(inFavor bool) string {
	if inFavor {
		return "for"
	}
	return "against"
}
