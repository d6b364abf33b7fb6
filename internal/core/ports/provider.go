package ports

import (
	"context"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
)

// Provider performs one lookup against the upstream records service.
// Failures are returned as *domain.ProviderError.
type Provider interface {
	Lookup(ctx context.Context, kind domain.QueryKind, term string) (domain.ProviderPayload, error)
}
