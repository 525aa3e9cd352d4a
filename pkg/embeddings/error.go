package embeddings

import "errors"

var (
	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrNotConfigured is returned when a required credential is missing.
	// It is fatal for the operation attempted and never retried.
	ErrNotConfigured = errors.New("embedding service not configured")
)
