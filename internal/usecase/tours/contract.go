package tours

import (
	"context"

	"github.com/travellive/tourquery/internal/domain"
)

// Resources hands out the shared vector-store handle.
type Resources interface {
	VectorStore(ctx context.Context, cfg domain.ConnectionConfig) (domain.VectorStore, error)
}

// ConfigSource returns the process-wide connection settings.
type ConfigSource interface {
	Connection() (domain.ConnectionConfig, error)
}
