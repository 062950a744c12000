package db

import "errors"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName string
	// Path is the document field holding the stored vector.
	Path   string
	Vector []float32
	K      int
	// NumCandidates widens the ANN candidate pool. Drivers without the notion ignore it.
	NumCandidates int
}

// Validate checks the query before it is sent to a driver.
func (q *KNNQuery) Validate() error {
	switch {
	case q.IndexName == "":
		return errors.New("index name is required")
	case q.Path == "":
		return errors.New("vector path is required")
	case len(q.Vector) == 0:
		return errors.New("vector is required")
	case q.K <= 0:
		return errors.New("k must be positive")
	}
	return nil
}

// IndexInfo describes one search index as reported by the database.
type IndexInfo struct {
	Name      string
	Type      string
	Status    string
	Queryable bool
}

// Hit is a single document returned by a vector search, best match first.
// Score is a similarity in [0,1], higher is closer.
type Hit struct {
	ID     string
	Score  float64
	Fields map[string]any
}
