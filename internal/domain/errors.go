package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure the search pipeline can surface carries exactly one of them.
var (
	// ErrConfiguration signals a missing or invalid configuration value.
	ErrConfiguration = errors.New("configuration error")
	// ErrDatabaseUnreachable signals a connection timeout or refusal.
	ErrDatabaseUnreachable = errors.New("database unreachable")
	// ErrEmbeddingProviderUnavailable signals the embedding client could not be built.
	ErrEmbeddingProviderUnavailable = errors.New("embedding provider unavailable")
	// ErrIndexIntrospectionFailed signals that listing search indexes failed.
	ErrIndexIntrospectionFailed = errors.New("search index introspection failed")
	// ErrSearchIndexMissing signals that the configured vector index does not exist.
	ErrSearchIndexMissing = errors.New("search index missing")
	// ErrSearchExecutionFailed signals a failed similarity search.
	ErrSearchExecutionFailed = errors.New("search execution failed")
)

// ErrEmbeddingRequest marks a failed embedding API call. Stays internal:
// at query time it is always wrapped into ErrSearchExecutionFailed.
var ErrEmbeddingRequest = errors.New("embedding request failed")

// Kinds lists the error kinds in the order transports should match them.
var Kinds = []error{
	ErrConfiguration,
	ErrDatabaseUnreachable,
	ErrEmbeddingProviderUnavailable,
	ErrIndexIntrospectionFailed,
	ErrSearchIndexMissing,
	ErrSearchExecutionFailed,
}

// SearchError is a classified pipeline failure.
// Error() is for logs; Message() and Hint() are safe to show to callers.
type SearchError struct {
	Kind       error
	Database   string
	Collection string
	Index      string
	Err        error
}

// NewSearchError classifies err under kind for the given namespace.
func NewSearchError(kind error, ns Namespace, err error) *SearchError {
	return &SearchError{
		Kind:       kind,
		Database:   ns.Database,
		Collection: ns.Collection,
		Index:      ns.Index,
		Err:        err,
	}
}

func (e *SearchError) Error() string {
	msg := e.Kind.Error()
	if e.Index != "" {
		msg += fmt.Sprintf(" (index %q on %s.%s)", e.Index, e.Database, e.Collection)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *SearchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Message returns the sanitized, caller-facing description.
func (e *SearchError) Message() string {
	switch e.Kind {
	case ErrConfiguration:
		return "The service is misconfigured."
	case ErrDatabaseUnreachable:
		return "Failed to connect to the tour database."
	case ErrEmbeddingProviderUnavailable:
		return "Failed to initialise the embedding provider."
	case ErrIndexIntrospectionFailed:
		return "Failed to list search indexes on the tour collection."
	case ErrSearchIndexMissing:
		return fmt.Sprintf("Vector search index %q does not exist on %s.%s.",
			e.Index, e.Database, e.Collection)
	case ErrSearchExecutionFailed:
		return "Failed to fetch documents."
	}
	return "internal error"
}

// Hint returns a remediation hint for the caller, or "" if there is none.
func (e *SearchError) Hint() string {
	switch e.Kind {
	case ErrConfiguration:
		return "Check the configuration file and required environment variables."
	case ErrDatabaseUnreachable:
		return "Please verify MONGODB_URI in .env and that your network/IP allowlist " +
			"permits this machine to access the database cluster."
	case ErrEmbeddingProviderUnavailable:
		return "Ensure OPENAI_API_KEY is set in your environment or in .env."
	case ErrIndexIntrospectionFailed:
		return "Check that the database user is allowed to list search indexes."
	case ErrSearchIndexMissing:
		return fmt.Sprintf("Create a vector search index named %q on %s.%s, then retry.",
			e.Index, e.Database, e.Collection)
	case ErrSearchExecutionFailed:
		return "Retry the request; if it keeps failing check the embedding provider quota."
	}
	return ""
}

// Code returns a stable snake_case identifier for the kind of err, for response
// bodies and metric labels. Unclassified errors map to "internal_error".
func Code(err error) string {
	switch KindOf(err) {
	case ErrConfiguration:
		return "configuration_error"
	case ErrDatabaseUnreachable:
		return "database_unreachable"
	case ErrEmbeddingProviderUnavailable:
		return "embedding_provider_unavailable"
	case ErrIndexIntrospectionFailed:
		return "index_introspection_failed"
	case ErrSearchIndexMissing:
		return "search_index_missing"
	case ErrSearchExecutionFailed:
		return "search_execution_failed"
	}
	return "internal_error"
}

// KindOf returns the kind of a classified error, or nil.
func KindOf(err error) error {
	var se *SearchError
	if errors.As(err, &se) {
		return se.Kind
	}
	for _, k := range Kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
