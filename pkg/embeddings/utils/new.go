// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"
	"time"

	"github.com/vitrineworks/vitrine/pkg/embeddings"
	"github.com/vitrineworks/vitrine/pkg/embeddings/clip"
	"github.com/vitrineworks/vitrine/pkg/embeddings/hf"
	"github.com/vitrineworks/vitrine/pkg/embeddings/ollama"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	APIKey       string
	Dimensions   int
	MaxRetries   int
	RetryDelay   time.Duration
}

func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case "hf":
		return hf.NewEmbedder(hf.EmbedderConfig{
			BaseURL:    o.TargetURL,
			Model:      o.Model,
			APIKey:     o.APIKey,
			Dimensions: o.Dimensions,
			MaxRetries: o.MaxRetries,
			RetryDelay: o.RetryDelay,
		})
	case "clip":
		return clip.NewEmbedder(clip.EmbedderConfig{
			BaseURL:    o.TargetURL,
			Dimensions: o.Dimensions,
		})
	case "ollama":
		return ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL:    o.TargetURL,
			Model:      o.Model,
			Dimensions: o.Dimensions,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
}
