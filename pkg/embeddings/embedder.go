// Package embeddings
package embeddings

import "context"

// Embedder provides text embedding capabilities.
type Embedder interface {
	// EmbedText converts text into a fixed-dimension vector embedding.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding dimension this embedder produces.
	Dimensions() int

	// Close releases any resources held by the embedder.
	Close() error
}

// ImageEmbedder is implemented by embedders whose text and image vectors
// share one space, enabling cross-modal similarity search.
type ImageEmbedder interface {
	// EmbedImage fetches the image at url and embeds it.
	EmbedImage(ctx context.Context, url string) ([]float32, error)
}
