package domain

import "context"

type searchUsageKey struct{}

// SearchUsage accumulates what a single search request consumed. Transports attach
// it to the context; the vector store records into it; the transport reports it.
type SearchUsage struct {
	EmbeddingTokens int
	Embedded        bool // set even on a cache hit that consumed no tokens
	Results         int
}

// WithSearchUsage returns a context carrying a fresh usage collector.
func WithSearchUsage(ctx context.Context) (context.Context, *SearchUsage) {
	u := &SearchUsage{}
	return context.WithValue(ctx, searchUsageKey{}, u), u
}

// SearchUsageFrom returns the collector stored in ctx, or nil.
func SearchUsageFrom(ctx context.Context) *SearchUsage {
	u, _ := ctx.Value(searchUsageKey{}).(*SearchUsage)
	return u
}

// RecordEmbedding notes one query embedding. Safe on a nil receiver.
func (u *SearchUsage) RecordEmbedding(tokens int) {
	if u == nil {
		return
	}
	u.EmbeddingTokens += tokens
	u.Embedded = true
}

// RecordResults notes the number of documents returned. Safe on a nil receiver.
func (u *SearchUsage) RecordResults(n int) {
	if u != nil {
		u.Results = n
	}
}
