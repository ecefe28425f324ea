// filepath: internal/housekeeping/interfaces.go
package housekeeping

import (
	"context"

	"adreel/internal/services"
)

// ObjectTX defines the bucket operations required by the sweeper.
type ObjectTX interface {
	Enabled() bool
	List(ctx context.Context, prefix string, fn func(services.ObjectInfo) error) error
	Delete(ctx context.Context, key string) bool
}

// DBTX defines the database lookups the sweeper uses to decide whether an object is still referenced.
type DBTX interface {
	ReferencedMaterialKeys(ctx context.Context, keys []string) (map[string]bool, error)
	ReferencedLogoKeys(ctx context.Context, keys []string) (map[string]bool, error)
	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)
}
