package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound       = errors.New("db: key not found")
	ErrUnsupportedDriver = errors.New("db: unsupported driver")
)

// Op constants name the database command for error context.
const (
	OpConnect           = "connect"
	OpPing              = "PING"
	OpListSearchIndexes = "$listSearchIndexes"
	OpVectorSearch      = "$vectorSearch"
	OpListIndexes       = "FT._LIST"
	OpSearch            = "FT.SEARCH"
	OpGet               = "GET"
	OpSet               = "SET"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
