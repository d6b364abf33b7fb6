package ports

import (
	"context"
	"time"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
)

// KeyStore owns every APIKey. Implementations serialize their
// read-modify-write cycles so concurrent Track calls never lose increments.
type KeyStore interface {
	// Load returns the whole mapping, seeding it first when no store exists.
	Load(ctx context.Context) (map[string]domain.APIKey, error)
	Get(ctx context.Context, key string) (domain.APIKey, error)
	// Track accepts an active key and records one use of it. It returns
	// domain.ErrNotFound or domain.ErrInactive without mutating anything.
	Track(ctx context.Context, key string, at time.Time) (domain.APIKey, error)
	Insert(ctx context.Context, key domain.APIKey) error
	Toggle(ctx context.Context, key string) (domain.APIKey, error)
	Delete(ctx context.Context, key string) error
}
