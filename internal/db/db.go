package db

import (
	"context"
	"time"
)

// Conn is an open database connection. Implementations are safe for concurrent use
// and are shared process-wide once built.
type Conn interface {
	Pinger
	Collection(database, name string) Collection
	Close(ctx context.Context) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Collection is a handle to one document collection.
type Collection interface {
	IndexLister
	VectorSearcher
}

// IndexLister enumerates the search indexes configured on a collection.
type IndexLister interface {
	ListSearchIndexes(ctx context.Context) ([]IndexInfo, error)
}

// VectorSearcher runs approximate nearest-neighbour queries.
type VectorSearcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) ([]Hit, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
