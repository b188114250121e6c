package ports

import (
	"context"

	"github.com/vncsmyrnk/governance/internal/core/domain"
)

// EventPublisher is the notification channel. It is only called after a
// change has been committed.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event) error
}
