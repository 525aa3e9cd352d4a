// Package vector provides interfaces and types for vector index storage.
package vector

import "context"

// Vector is one persisted item: an id, its embedding, and flat string
// metadata. Metadata must never contain empty-valued keys when persisted;
// callers strip them with chunker.CleanMetadata before Upsert.
type Vector struct {
	// ID is the originating chunk id, or "<chunk_id>-image" for an
	// image-derived sibling vector.
	ID string

	// Values is the embedding. Its length must match the index dimension.
	Values []float32

	// Metadata carries the chunk text, type, and section fields.
	Metadata map[string]string
}

// QueryMatch is one ranked similarity-search result.
type QueryMatch struct {
	ID string

	// Score is cosine similarity. Matches arrive ranked descending;
	// ties break in provider-defined order.
	Score float32

	Metadata map[string]string
}

// Store owns the lifecycle of a named external vector index.
type Store interface {
	// EnsureReady is idempotent: it creates the index with the configured
	// dimension and cosine metric if absent, destructively recreates it
	// when the declared dimension disagrees, and blocks until the provider
	// reports ready.
	EnsureReady(ctx context.Context) error

	// Upsert stores vectors, ensuring the index is ready first.
	Upsert(ctx context.Context, vectors []Vector) error

	// Query returns the topK most similar vectors, ranked descending by
	// similarity score.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryMatch, error)

	// Clear removes every vector in the index. Used exclusively at the
	// start of ingestion; an already-empty index is an acceptable outcome.
	Clear(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
