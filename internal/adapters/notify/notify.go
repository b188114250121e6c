// Package notify provides EventPublisher implementations for the ledger's
// notification channel.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/vncsmyrnk/governance/internal/core/domain"
	"github.com/vncsmyrnk/governance/internal/core/ports"
)

// LogPublisher writes every event to a structured logger.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, events ...domain.Event) error {
	for _, e := range events {
		switch ev := e.(type) {
		case domain.ProposalCreated:
			p.logger.InfoContext(ctx, "proposal created", "event", ev.EventName(), "id", ev.ID, "title", ev.Title)
		case domain.VoteCast:
			p.logger.InfoContext(ctx, "vote cast", "event", ev.EventName(), "proposal_id", ev.ProposalID, "voter", ev.Voter, "in_favor", ev.InFavor)
		default:
			p.logger.InfoContext(ctx, "ledger event", "event", e.EventName())
		}
	}
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(ctx context.Context, events ...domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, events...)
	return nil
}

func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]domain.Event(nil), r.events...)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = nil
}

// Fanout publishes to every publisher in order, even when one fails, and
// joins the errors.
type Fanout []ports.EventPublisher

func (f Fanout) Publish(ctx context.Context, events ...domain.Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, events...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
