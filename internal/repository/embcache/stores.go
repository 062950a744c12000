package embcache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.etcd.io/bbolt"

	"github.com/travellive/tourquery/internal/db"
)

// DefaultMemorySize bounds the in-process cache when no size is configured.
const DefaultMemorySize = 10000

// MemoryStore is an in-process LRU store.
type MemoryStore struct {
	cache *lru.Cache[string, []byte]
}

// NewMemoryStore creates an LRU store holding at most size entries.
func NewMemoryStore(size int) (*MemoryStore, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &MemoryStore{cache: cache}, nil
}

// Get returns a copy of the stored value.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.cache.Add(key, append([]byte(nil), value...))
	return nil
}

// Len returns the number of cached entries.
func (m *MemoryStore) Len() int { return m.cache.Len() }

var bucketEmbeddings = []byte("embeddings")

// BoltStore persists embeddings in a local bbolt file so they survive restarts.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the cache file at path.
func NewBoltStore(path string) (*BoltStore, error) {
	bdb, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = bdb.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketEmbeddings); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketEmbeddings, err)
		}
		return nil
	})
	if err != nil {
		_ = bdb.Close()
		return nil, err
	}

	return &BoltStore{db: bdb}, nil
}

// Get reads a value. The returned slice is a copy, valid after the transaction.
func (s *BoltStore) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketEmbeddings).Get([]byte(key))
		if v == nil {
			return db.ErrKeyNotFound
		}
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err //nolint:wrapcheck // sentinel must stay comparable
}

// Set writes a value.
func (s *BoltStore) Set(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error { //nolint:wrapcheck // pass-through
		return tx.Bucket(bucketEmbeddings).Put([]byte(key), value)
	})
}

// Close releases the file lock.
func (s *BoltStore) Close() error {
	return s.db.Close() //nolint:wrapcheck // pass-through
}

// ttlWriter is the part of db.KVStore the TTL adapter needs.
type ttlWriter interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// TTLStore adapts a KV store so every Set expires after a fixed TTL.
type TTLStore struct {
	kv  ttlWriter
	ttl time.Duration
}

// WithTTL wraps kv. A zero ttl stores without expiry.
func WithTTL(kv ttlWriter, ttl time.Duration) *TTLStore {
	return &TTLStore{kv: kv, ttl: ttl}
}

// Get reads through to the wrapped store.
func (s *TTLStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.kv.Get(ctx, key) //nolint:wrapcheck // pass-through
}

// Set writes with the configured TTL.
func (s *TTLStore) Set(ctx context.Context, key string, value []byte) error {
	return s.kv.SetWithTTL(ctx, key, value, s.ttl) //nolint:wrapcheck // pass-through
}
