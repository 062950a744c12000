// Package tours is the tour search use case: normalise the query, resolve the
// shared vector store, verify the index, search and render.
package tours

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/travellive/tourquery/internal/domain"
	"github.com/travellive/tourquery/internal/domain/search/mode"
	"github.com/travellive/tourquery/internal/domain/search/query"
	"github.com/travellive/tourquery/internal/domain/tour"
	"github.com/travellive/tourquery/internal/logger"
	"github.com/travellive/tourquery/internal/metrics"
)

// DefaultK is used when the caller passes k < 1.
const DefaultK = 3

// Result is the outcome of one search. Exactly one of Tours and Markdown is
// populated, according to Mode.
type Result struct {
	Query     string
	Mode      mode.Mode
	Documents []tour.Document
	Tours     []tour.Projected
	Markdown  string
}

// Service runs tour searches against the shared resources.
type Service struct {
	resources Resources
	config    ConfigSource
}

// New creates a tour search service.
func New(resources Resources, config ConfigSource) *Service {
	return &Service{resources: resources, config: config}
}

// Search runs the full pipeline for raw. A blank raw is not an error: it returns
// the empty result without touching the network.
func (s *Service) Search(ctx context.Context, raw string, k int, m mode.Mode) (Result, error) {
	if !m.IsValid() {
		m = mode.Structured
	}
	if k < 1 {
		k = DefaultK
	}

	ctx = logger.With(ctx, zap.String("mode", string(m)), zap.Int("k", k))
	start := time.Now()
	res, err := s.search(ctx, raw, k, m)

	outcome := "ok"
	if err != nil {
		outcome = domain.Code(err)
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(m), outcome).Inc()
	metrics.SearchDuration.WithLabelValues(string(m)).Observe(time.Since(start).Seconds())

	return res, err
}

func (s *Service) search(ctx context.Context, raw string, k int, m mode.Mode) (Result, error) {
	q, ok := query.Normalize(raw)
	if !ok {
		return render("", m, nil), nil
	}

	cfg, err := s.config.Connection()
	if err != nil {
		return Result{}, asConfigError(err)
	}

	vs, err := s.resources.VectorStore(ctx, cfg)
	if err != nil {
		return Result{}, err //nolint:wrapcheck // already classified
	}

	if err := AssertVectorIndexPresent(ctx, vs, cfg.VectorIndex); err != nil {
		return Result{}, err
	}

	docs, err := Execute(ctx, vs, q, k)
	if err != nil {
		return Result{}, err
	}

	metrics.SearchResults.Observe(float64(len(docs)))
	domain.SearchUsageFrom(ctx).RecordResults(len(docs))
	logger.FromContext(ctx).Debug("Tour search completed", zap.Int("results", len(docs)))

	return render(q.String(), m, docs), nil
}

// Execute asks the store for at most k documents, closest first. Failures are
// classified as ErrSearchExecutionFailed with the cause kept.
func Execute(ctx context.Context, vs domain.VectorStore, q query.Query, k int) ([]tour.Document, error) {
	docs, err := vs.SimilaritySearch(ctx, q.String(), k)
	if err != nil {
		return nil, domain.NewSearchError(domain.ErrSearchExecutionFailed, vs.Namespace(), err)
	}
	if len(docs) > k {
		docs = docs[:k]
	}
	return docs, nil
}

func render(q string, m mode.Mode, docs []tour.Document) Result {
	res := Result{Query: q, Mode: m, Documents: docs}
	if res.Documents == nil {
		res.Documents = []tour.Document{}
	}
	switch m {
	case mode.Markdown:
		res.Markdown = tour.RenderMarkdown(docs)
	default:
		res.Tours = tour.Project(docs)
	}
	return res
}

func asConfigError(err error) error {
	var se *domain.SearchError
	if errors.As(err, &se) {
		return err
	}
	return domain.NewSearchError(domain.ErrConfiguration, domain.Namespace{}, err)
}
