package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// DefaultServerSelectionTimeout bounds how long opening a database connection may take.
const DefaultServerSelectionTimeout = 5 * time.Second

// ConnectionConfig holds the immutable connection and search parameters.
// Every cache key in the process is derived from it.
type ConnectionConfig struct {
	Driver       string // atlas, redis
	URI          string
	Database     string
	Collection   string
	VectorIndex  string
	TextKey      string
	EmbeddingKey string

	EmbeddingModel      string
	EmbeddingAPIKey     string
	EmbeddingBaseURL    string
	EmbeddingDimensions int

	ServerSelectionTimeout time.Duration
	NumCandidatesFactor    int
}

// Validate reports the first required value that is empty.
func (c *ConnectionConfig) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"database.uri", c.URI},
		{"database.name", c.Database},
		{"database.collection", c.Collection},
		{"database.vector_index", c.VectorIndex},
		{"database.text_key", c.TextKey},
		{"database.embedding_key", c.EmbeddingKey},
		{"embedding.model", c.EmbeddingModel},
		{"embedding.api_key", c.EmbeddingAPIKey},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrConfiguration, r.name)
		}
	}
	return nil
}

// Namespace returns the database/collection/index triple searches run against.
func (c *ConnectionConfig) Namespace() Namespace {
	return Namespace{Database: c.Database, Collection: c.Collection, Index: c.VectorIndex}
}

// EmbeddingSpaceID names the vector space produced by the embedding settings:
// two configs with the same ID yield interchangeable vectors.
func (c *ConnectionConfig) EmbeddingSpaceID() string {
	return fmt.Sprintf("%s|%s|%d", c.EmbeddingModel, c.EmbeddingBaseURL, c.EmbeddingDimensions)
}

// EmbeddingKeyID identifies the embedding client handle. The credential is hashed
// so keys can be logged.
func (c *ConnectionConfig) EmbeddingKeyID() string {
	h := sha256.Sum256([]byte(c.EmbeddingAPIKey))
	return c.EmbeddingSpaceID() + "|" + hex.EncodeToString(h[:8])
}

// ConnectionKeyID identifies the database connection handle.
func (c *ConnectionConfig) ConnectionKeyID() string {
	h := sha256.Sum256([]byte(c.URI))
	return c.Driver + "|" + hex.EncodeToString(h[:16])
}

// VectorStoreKeyID identifies the composed vector-store handle.
func (c *ConnectionConfig) VectorStoreKeyID() string {
	return strings.Join([]string{
		c.ConnectionKeyID(), c.EmbeddingKeyID(),
		c.Database, c.Collection, c.VectorIndex, c.TextKey, c.EmbeddingKey,
	}, "|")
}
