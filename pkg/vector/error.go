package vector

import "errors"

var (
	// ErrNotFound is returned when a vector is not found in the index.
	ErrNotFound = errors.New("vector not found")

	// ErrConnection is returned when the vector store connection fails.
	ErrConnection = errors.New("vector store connection failed")

	// ErrNotConfigured is returned when a required credential is missing.
	ErrNotConfigured = errors.New("vector store not configured")
)
