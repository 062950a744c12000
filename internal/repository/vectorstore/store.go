// Package vectorstore composes a database collection and an embedder into the
// tour similarity-search handle.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/travellive/tourquery/internal/db"
	"github.com/travellive/tourquery/internal/domain"
	"github.com/travellive/tourquery/internal/domain/tour"
)

// Compile-time check: Store implements domain.VectorStore.
var _ domain.VectorStore = (*Store)(nil)

const defaultCandidatesFactor = 10

// Store implements domain.VectorStore. It holds no per-request state.
type Store struct {
	coll                db.Collection
	embedder            domain.Embedder
	ns                  domain.Namespace
	textKey             string
	embeddingKey        string
	numCandidatesFactor int
}

// New creates a vector store over coll using the names from cfg.
func New(coll db.Collection, embedder domain.Embedder, cfg domain.ConnectionConfig) *Store {
	factor := cfg.NumCandidatesFactor
	if factor <= 0 {
		factor = defaultCandidatesFactor
	}
	return &Store{
		coll:                coll,
		embedder:            embedder,
		ns:                  cfg.Namespace(),
		textKey:             cfg.TextKey,
		embeddingKey:        cfg.EmbeddingKey,
		numCandidatesFactor: factor,
	}
}

// Namespace returns the database, collection and index this store searches.
func (s *Store) Namespace() domain.Namespace { return s.ns }

// ListSearchIndexes returns the search indexes currently defined on the collection.
func (s *Store) ListSearchIndexes(ctx context.Context) ([]domain.SearchIndex, error) {
	infos, err := s.coll.ListSearchIndexes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list search indexes on %s.%s: %w", s.ns.Database, s.ns.Collection, err)
	}

	out := make([]domain.SearchIndex, len(infos))
	for i, info := range infos {
		out[i] = domain.SearchIndex{
			Name:      info.Name,
			Type:      info.Type,
			Status:    info.Status,
			Queryable: info.Queryable,
		}
	}
	return out, nil
}

// SimilaritySearch embeds query and returns up to k documents, most similar first.
func (s *Store) SimilaritySearch(ctx context.Context, query string, k int) ([]tour.Document, error) {
	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	domain.SearchUsageFrom(ctx).RecordEmbedding(emb.TotalTokens)

	hits, err := s.coll.SearchKNN(ctx, &db.KNNQuery{
		IndexName:     s.ns.Index,
		Path:          s.embeddingKey,
		Vector:        emb.Embedding,
		K:             k,
		NumCandidates: k * s.numCandidatesFactor,
	})
	if err != nil {
		return nil, fmt.Errorf("vector search %s: %w", s.ns.Index, err)
	}

	docs := make([]tour.Document, len(hits))
	for i := range hits {
		docs[i] = s.toDocument(hits[i])
	}
	return docs, nil
}

func (s *Store) toDocument(h db.Hit) tour.Document {
	meta := make(map[string]any, len(h.Fields))
	for k, v := range h.Fields {
		if k == s.textKey || k == s.embeddingKey {
			continue
		}
		meta[k] = v
	}

	content, _ := h.Fields[s.textKey].(string)
	return tour.Document{
		ID:       h.ID,
		Content:  content,
		Metadata: meta,
		Score:    h.Score,
	}
}
