// Package query normalizes free-text search input.
package query

import "strings"

// Query is a trimmed, non-empty search string.
type Query string

// Normalize trims surrounding whitespace. ok is false for blank input, which
// callers answer with an empty result without any I/O.
func Normalize(raw string) (q Query, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	return Query(trimmed), true
}

// String returns the query text.
func (q Query) String() string { return string(q) }
