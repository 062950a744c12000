package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/travellive/tourquery/internal/config"
	"github.com/travellive/tourquery/internal/db"
	"github.com/travellive/tourquery/internal/db/atlas"
	"github.com/travellive/tourquery/internal/db/redis"
	"github.com/travellive/tourquery/internal/domain"
	"github.com/travellive/tourquery/internal/metrics"
	"github.com/travellive/tourquery/internal/repository/embcache"
	"github.com/travellive/tourquery/internal/resource"
	openaiEmb "github.com/travellive/tourquery/internal/transport/openai"
	healthuc "github.com/travellive/tourquery/internal/usecase/health"
	toursuc "github.com/travellive/tourquery/internal/usecase/tours"
)

// runtime is the explicit application context: one resource cache and the use
// cases built over it.
type runtime struct {
	cfg       config.Config
	logger    *zap.Logger
	provider  *config.Provider
	resources *resource.Cache
	tours     *toursuc.Service
	health    *healthuc.Service
	closers   []func(context.Context) error
}

func newRuntime(cfg config.Config, logger *zap.Logger) (*runtime, error) {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	store, closeStore, err := newCacheStore(cfg.Cache)
	if err != nil {
		return nil, err
	}

	resources := resource.New(
		newEmbedderFactory(store, cfg.Embedding.QueryInstruction, logger),
		dial,
		logger,
		resource.WithBuildCounter(metrics.ResourceBuildsTotal),
	)
	provider := config.NewProvider(cfg)

	rt := &runtime{
		cfg:       cfg,
		logger:    logger,
		provider:  provider,
		resources: resources,
		tours:     toursuc.New(resources, provider),
		health:    healthuc.New(resources, provider),
		closers:   []func(context.Context) error{resources.Close},
	}
	if closeStore != nil {
		rt.closers = append(rt.closers, closeStore)
	}
	return rt, nil
}

// warm builds the shared handles ahead of the first request. Failure is only
// logged: the handles are retried lazily on demand.
func (rt *runtime) warm(ctx context.Context) {
	conn, err := rt.provider.Connection()
	if err != nil {
		rt.logger.Warn("Warm-up skipped", zap.Error(err))
		return
	}
	if err := rt.resources.Warm(ctx, conn); err != nil {
		rt.logger.Warn("Warm-up failed, resources will be built on first use", zap.Error(err))
		return
	}
	rt.logger.Info("Resources warmed up")
}

func (rt *runtime) Close(ctx context.Context) error {
	var errs []error
	for _, c := range rt.closers {
		if err := c(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// dial opens the database connection for the configured driver.
func dial(ctx context.Context, cfg domain.ConnectionConfig) (db.Conn, error) {
	switch cfg.Driver {
	case config.DriverAtlas, "":
		c, err := atlas.Dial(ctx, cfg.URI, cfg.ServerSelectionTimeout)
		if err != nil {
			return nil, err //nolint:wrapcheck // classified by the resource cache
		}
		return c, nil
	case config.DriverRedis:
		s, err := redis.Dial(ctx, cfg.URI, cfg.ServerSelectionTimeout)
		if err != nil {
			return nil, err //nolint:wrapcheck // classified by the resource cache
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", db.ErrUnsupportedDriver, cfg.Driver)
}

// newEmbedderFactory assembles the decorator chain: OpenAI -> Cached -> Instruction.
// The instruction is outermost so the cache key includes it.
func newEmbedderFactory(store embcache.Store, instruction string, logger *zap.Logger) resource.EmbedderFactory {
	return func(_ context.Context, cfg domain.ConnectionConfig) (domain.Embedder, error) {
		base, err := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.EmbeddingAPIKey,
			BaseURL:    cfg.EmbeddingBaseURL,
			Model:      cfg.EmbeddingModel,
			Dimensions: cfg.EmbeddingDimensions,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder: %w", err)
		}

		var embedder domain.Embedder = base
		if store != nil {
			embedder = embcache.New(base, store, cfg.EmbeddingSpaceID(), metrics.EmbeddingCacheTotal, logger,
				embcache.WithDimensions(cfg.EmbeddingDimensions))
		}
		if instruction != "" {
			embedder = domain.NewInstructionEmbedder(embedder, instruction)
		}
		return embedder, nil
	}
}

// newCacheStore opens the query-embedding cache store. A nil store disables caching.
func newCacheStore(cfg config.CacheConfig) (embcache.Store, func(context.Context) error, error) {
	switch cfg.Driver {
	case config.CacheNone, "":
		return nil, nil, nil
	case config.CacheMemory:
		size := cfg.Size
		if size <= 0 {
			size = embcache.DefaultMemorySize
		}
		s, err := embcache.NewMemoryStore(size)
		if err != nil {
			return nil, nil, fmt.Errorf("memory embedding cache: %w", err)
		}
		return s, nil, nil
	case config.CacheBolt:
		s, err := embcache.NewBoltStore(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("bolt embedding cache: %w", err)
		}
		return s, func(context.Context) error { return s.Close() }, nil
	case config.CacheRedis:
		s, err := redis.NewStore(redis.Config{URL: cfg.URL, Addrs: cfg.Addrs})
		if err != nil {
			return nil, nil, fmt.Errorf("redis embedding cache: %w", err)
		}
		ttl := time.Duration(cfg.TTLSec) * time.Second
		return embcache.WithTTL(s, ttl), s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown embedding cache driver %q", cfg.Driver)
}
