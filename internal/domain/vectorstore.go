package domain

import (
	"context"

	"github.com/travellive/tourquery/internal/domain/tour"
)

// Namespace locates the vector index a search runs against.
type Namespace struct {
	Database   string
	Collection string
	Index      string
}

// SearchIndex describes one search index configured on a collection.
// It is fetched fresh on every availability check.
type SearchIndex struct {
	Name      string
	Type      string
	Status    string
	Queryable bool
}

// VectorStore is the composed search handle: a collection, an embedder and the
// index/field names. Handles are shared read-only across requests.
type VectorStore interface {
	Namespace() Namespace
	ListSearchIndexes(ctx context.Context) ([]SearchIndex, error)
	SimilaritySearch(ctx context.Context, query string, k int) ([]tour.Document, error)
}
