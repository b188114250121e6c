package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/governance/internal/core/domain"
)

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.AccountID, error)
}

type TokenIssuer interface {
	Issue(account domain.AccountID, ttl time.Duration) (string, error)
}
