package resource

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

// Memo is a lazily populated, per-key cache of long-lived handles.
//
// Reads of a populated key are a single sync.Map load. Concurrent misses on the
// same key share one construction through singleflight; the value is re-checked
// inside the flight so a construction that lost the race to Store is never
// repeated. Failed constructions are not stored and the next call retries.
type Memo[V any] struct {
	name   string
	values sync.Map // string -> V
	group  singleflight.Group
	builds *prometheus.CounterVec
}

// NewMemo creates a memo. builds, when non-nil, is a counter vec with labels
// {resource, result}.
func NewMemo[V any](name string, builds *prometheus.CounterVec) *Memo[V] {
	return &Memo[V]{name: name, builds: builds}
}

// Get returns the value for key, calling build at most once per key across all
// concurrent callers until it succeeds. build runs on a context detached from
// the caller's cancellation; a caller whose ctx ends while waiting gets ctx.Err()
// and the construction carries on for the others.
func (m *Memo[V]) Get(ctx context.Context, key string, build func(context.Context) (V, error)) (V, error) {
	if v, ok := m.values.Load(key); ok {
		return v.(V), nil
	}

	buildCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(key, func() (any, error) {
		if v, ok := m.values.Load(key); ok {
			return v, nil
		}
		v, err := build(buildCtx)
		if err != nil {
			m.count("error")
			return nil, err
		}
		m.values.Store(key, v)
		m.count("ok")
		return v, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err() //nolint:wrapcheck // caller's own cancellation
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}
		v, _ := r.Val.(V)
		return v, nil
	}
}

// Peek returns the cached value without building it.
func (m *Memo[V]) Peek(key string) (V, bool) {
	v, ok := m.values.Load(key)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}

// Range calls fn for every cached value until fn returns false.
func (m *Memo[V]) Range(fn func(key string, v V) bool) {
	m.values.Range(func(k, v any) bool {
		return fn(k.(string), v.(V))
	})
}

// Forget drops key so the next Get rebuilds it.
func (m *Memo[V]) Forget(key string) {
	m.values.Delete(key)
	m.group.Forget(key)
}

func (m *Memo[V]) count(result string) {
	if m.builds != nil {
		m.builds.WithLabelValues(m.name, result).Inc()
	}
}
