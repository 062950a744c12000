package tours

import (
	"context"

	"github.com/travellive/tourquery/internal/domain"
	"github.com/travellive/tourquery/internal/metrics"
)

// AssertVectorIndexPresent lists the search indexes on the store's collection and
// fails unless one of them is named indexName. It is not cached: indexes can be
// dropped or renamed out of band at any time.
func AssertVectorIndexPresent(ctx context.Context, vs domain.VectorStore, indexName string) error {
	ns := vs.Namespace()
	ns.Index = indexName

	indexes, err := vs.ListSearchIndexes(ctx)
	if err != nil {
		metrics.IndexChecksTotal.WithLabelValues("error").Inc()
		return domain.NewSearchError(domain.ErrIndexIntrospectionFailed, ns, err)
	}

	for _, idx := range indexes {
		if idx.Name == indexName {
			metrics.IndexChecksTotal.WithLabelValues("present").Inc()
			return nil
		}
	}

	metrics.IndexChecksTotal.WithLabelValues("missing").Inc()
	return domain.NewSearchError(domain.ErrSearchIndexMissing, ns, nil)
}
