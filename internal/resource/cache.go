// Package resource owns the process-wide handles the search pipeline shares:
// the embedding client, the database connection and the composed vector store.
package resource

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/travellive/tourquery/internal/db"
	"github.com/travellive/tourquery/internal/domain"
	"github.com/travellive/tourquery/internal/repository/vectorstore"
)

// Resource names used in logs and metric labels.
const (
	ResourceEmbedder    = "embedding_client"
	ResourceConnection  = "database_connection"
	ResourceVectorStore = "vector_store"
)

// EmbedderFactory builds an embedding client for cfg. It must not block on the network.
type EmbedderFactory func(ctx context.Context, cfg domain.ConnectionConfig) (domain.Embedder, error)

// Dialer opens a database connection for cfg, bounded by cfg.ServerSelectionTimeout.
type Dialer func(ctx context.Context, cfg domain.ConnectionConfig) (db.Conn, error)

// Cache is the application context holding the three handle slots. Build one at
// process start and pass it to every request path.
type Cache struct {
	embedders   *Memo[domain.Embedder]
	conns       *Memo[db.Conn]
	stores      *Memo[domain.VectorStore]
	newEmbedder EmbedderFactory
	dial        Dialer
	logger      *zap.Logger
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	builds *prometheus.CounterVec
}

// WithBuildCounter records constructions in a {resource, result} counter vec.
func WithBuildCounter(c *prometheus.CounterVec) Option {
	return func(o *options) { o.builds = c }
}

// New creates an empty cache.
func New(newEmbedder EmbedderFactory, dial Dialer, logger *zap.Logger, opts ...Option) *Cache {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		embedders:   NewMemo[domain.Embedder](ResourceEmbedder, o.builds),
		conns:       NewMemo[db.Conn](ResourceConnection, o.builds),
		stores:      NewMemo[domain.VectorStore](ResourceVectorStore, o.builds),
		newEmbedder: newEmbedder,
		dial:        dial,
		logger:      logger,
	}
}

// EmbeddingClient returns the embedding client for cfg's model and credential.
func (c *Cache) EmbeddingClient(ctx context.Context, cfg domain.ConnectionConfig) (domain.Embedder, error) {
	emb, err := c.embedders.Get(ctx, cfg.EmbeddingKeyID(), func(ctx context.Context) (domain.Embedder, error) {
		emb, err := c.newEmbedder(ctx, cfg)
		if err != nil {
			c.logger.Warn("Embedding client construction failed",
				zap.String("model", cfg.EmbeddingModel), zap.Error(err))
			return nil, err
		}
		c.logger.Info("Embedding client ready", zap.String("model", cfg.EmbeddingModel))
		return emb, nil
	})
	if err != nil {
		return nil, classify(ctx, domain.ErrEmbeddingProviderUnavailable, domain.Namespace{}, err)
	}
	return emb, nil
}

// DatabaseConnection returns the connection for cfg's driver and URI.
func (c *Cache) DatabaseConnection(ctx context.Context, cfg domain.ConnectionConfig) (db.Conn, error) {
	conn, err := c.conns.Get(ctx, cfg.ConnectionKeyID(), func(ctx context.Context) (db.Conn, error) {
		conn, err := c.dial(ctx, cfg)
		if err != nil {
			c.logger.Warn("Database connection failed",
				zap.String("driver", cfg.Driver),
				zap.Duration("server_selection_timeout", cfg.ServerSelectionTimeout),
				zap.Error(err))
			return nil, err
		}
		c.logger.Info("Database connection ready", zap.String("driver", cfg.Driver))
		return conn, nil
	})
	if err != nil {
		return nil, classify(ctx, domain.ErrDatabaseUnreachable, cfg.Namespace(), err)
	}
	return conn, nil
}

// VectorStore returns the composed search handle for cfg. It fails only when one
// of its dependencies fails; each dependency keeps its own slot, so a cached
// embedding client survives a failed connection attempt.
func (c *Cache) VectorStore(ctx context.Context, cfg domain.ConnectionConfig) (domain.VectorStore, error) {
	if vs, ok := c.stores.Peek(cfg.VectorStoreKeyID()); ok {
		return vs, nil
	}

	emb, err := c.EmbeddingClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	conn, err := c.DatabaseConnection(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return c.stores.Get(ctx, cfg.VectorStoreKeyID(), func(context.Context) (domain.VectorStore, error) {
		return vectorstore.New(conn.Collection(cfg.Database, cfg.Collection), emb, cfg), nil
	})
}

// Warm builds the embedding client and the connection concurrently, then the
// vector store. Failures are returned but leave nothing cached.
func (c *Cache) Warm(ctx context.Context, cfg domain.ConnectionConfig) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := c.EmbeddingClient(gctx, cfg)
		return err
	})
	g.Go(func() error {
		_, err := c.DatabaseConnection(gctx, cfg)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("warm up: %w", err)
	}
	if _, err := c.VectorStore(ctx, cfg); err != nil {
		return fmt.Errorf("warm up: %w", err)
	}
	return nil
}

// Close closes every cached connection and empties the connection and store slots.
func (c *Cache) Close(ctx context.Context) error {
	var errs []error
	c.conns.Range(func(key string, conn db.Conn) bool {
		if err := conn.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", ResourceConnection, err))
		}
		c.conns.Forget(key)
		return true
	})
	c.stores.Range(func(key string, _ domain.VectorStore) bool {
		c.stores.Forget(key)
		return true
	})
	return errors.Join(errs...)
}

// classify wraps a construction failure under kind. The caller's own
// cancellation is returned as-is; a caller deadline that ran out while the
// resource was still being built is classified like any other failure.
func classify(ctx context.Context, kind error, ns domain.Namespace, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) && errors.Is(err, context.Canceled) {
		return err
	}
	var se *domain.SearchError
	if errors.As(err, &se) {
		return err
	}
	return domain.NewSearchError(kind, ns, err)
}
