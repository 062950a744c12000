package health

import (
	"context"

	"github.com/travellive/tourquery/internal/db"
	"github.com/travellive/tourquery/internal/domain"
)

// Resources hands out the shared handles the checks run against.
type Resources interface {
	DatabaseConnection(ctx context.Context, cfg domain.ConnectionConfig) (db.Conn, error)
	EmbeddingClient(ctx context.Context, cfg domain.ConnectionConfig) (domain.Embedder, error)
}

// ConfigSource returns the process-wide connection settings.
type ConfigSource interface {
	Connection() (domain.ConnectionConfig, error)
}
