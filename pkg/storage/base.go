// Package storage provides interfaces and types for vector storage backends.
//
// It defines the VectorStore interface that all storage implementations must satisfy,
// along with the record type and search options. Every operation is scoped to
// a namespace; backends filter by exact namespace equality so records stored
// under one namespace can never surface in another.
package storage

import (
	"context"
	"time"
)

// Record represents a memory record stored in the vector store.
//
// This type is defined in the storage package to avoid circular dependencies
// with the core package. It mirrors the core.MemoryRecord structure.
//
// Content and Namespace are immutable after insert; AccessCount and
// LastAccessedAt are the only fields mutated after creation (via TouchAccess).
type Record struct {
	// ID is the unique identifier of the record.
	ID int64

	// Namespace is the full namespace key the record belongs to,
	// e.g. "tenant:agent" or "tenant:agent:thread:t42".
	Namespace string

	// Content is the text content of the record.
	Content string

	// Embedding is the vector embedding for similarity search.
	Embedding []float64

	// MemoryType tags the kind of memory (e.g. "interaction", "insight").
	MemoryType string

	// Metadata contains additional structured information.
	Metadata map[string]interface{}

	// AccessCount is the number of times the record was returned by a search.
	AccessCount int64

	// CreatedAt is when the record was created.
	CreatedAt time.Time

	// LastAccessedAt is when the record was last returned by a search
	// (nil if never accessed).
	LastAccessedAt *time.Time

	// Score is the cosine similarity score from search operations.
	Score float64
}

// VectorStore defines the interface for vector storage backends.
//
// All storage implementations (SQLite, PostgreSQL, MySQL) must implement this interface.
type VectorStore interface {
	// Insert inserts a record into the store.
	//
	// The insert is atomic: either the whole record is persisted or nothing is.
	Insert(ctx context.Context, record *Record) error

	// Search performs vector similarity search within one namespace.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - embedding: Query embedding vector
	//   - opts: Search options (Namespace, Limit, MinScore, MemoryType)
	//
	// Returns matching records sorted by similarity (highest first); ties are
	// broken by most recent creation time first. Results never cross the
	// namespace given in opts.
	Search(ctx context.Context, embedding []float64, opts *SearchOptions) ([]*Record, error)

	// FetchRecent returns the last limit records for a namespace in
	// chronological order (oldest of the window first). It does not touch
	// the embedding path and stays available when the embedder is down.
	FetchRecent(ctx context.Context, namespace string, limit int) ([]*Record, error)

	// TouchAccess increments the access counter and refreshes the
	// last-accessed timestamp for the given record IDs. Lost updates under
	// concurrency are acceptable; this is retrieval telemetry, not state.
	TouchAccess(ctx context.Context, ids []int64) error

	// Get retrieves a record by ID.
	Get(ctx context.Context, id int64) (*Record, error)

	// DeleteAll deletes all records in a namespace.
	DeleteAll(ctx context.Context, namespace string) error

	// Close closes the store and releases resources.
	Close() error
}

// SearchOptions contains options for search operations.
type SearchOptions struct {
	// Namespace scopes the search. Matching is exact string equality,
	// never a prefix or pattern match.
	Namespace string

	// Limit sets the maximum number of results to return.
	Limit int

	// MinScore sets the minimum similarity score for results.
	MinScore float64

	// MemoryType restricts results to records with this memory type.
	// Empty means all types.
	MemoryType string
}
