// Package clip implements pkg/embeddings' Embedder against a CLIP inference
// service exposing text and image encoders in one joint vector space.
package clip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vitrineworks/vitrine/pkg/embeddings"
)

const (
	// DefaultBaseURL is the default CLIP service URL.
	DefaultBaseURL = "http://localhost:8090"

	// DefaultDimensions is the output dimension of ViT-B-32 CLIP models.
	DefaultDimensions = 512
)

// Embedder wraps a CLIP inference service. Text and image embeddings share
// the same space, so an image vector can be retrieved by a text query.
type Embedder struct {
	baseURL    string
	dimensions int
	httpClient *http.Client
}

// EmbedderConfig holds configuration for the CLIP embedder.
type EmbedderConfig struct {
	// BaseURL is the CLIP service URL. Defaults to DefaultBaseURL.
	BaseURL string

	// Dimensions is the model's output dimension. Defaults to
	// DefaultDimensions.
	Dimensions int
}

type textRequest struct {
	Text string `json:"text"`
}

type imageRequest struct {
	URL string `json:"url"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewEmbedder creates a new embedder backed by a CLIP inference service.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = DefaultDimensions
	}

	return &Embedder{
		baseURL:    baseURL,
		dimensions: dimensions,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// EmbedText embeds text with the CLIP text encoder.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, "/embed/text", textRequest{Text: text})
}

// EmbedImage downloads and embeds the image at url with the CLIP image
// encoder. A failure here affects only this image; callers are expected to
// continue with their remaining work.
func (e *Embedder) EmbedImage(ctx context.Context, url string) ([]float32, error) {
	return e.embed(ctx, "/embed/image", imageRequest{URL: url})
}

func (e *Embedder) embed(ctx context.Context, path string, body any) ([]float32, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", embeddings.ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", embeddings.ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", embeddings.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: clip service returned status %d: %s",
			embeddings.ErrEmbedding, resp.StatusCode, string(respBody))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", embeddings.ErrEmbedding, err)
	}

	if len(embedResp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", embeddings.ErrEmbedding)
	}

	return embeddings.Normalize(embedResp.Embedding), nil
}

// Dimensions returns the embedding dimension.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	return nil
}

var (
	_ embeddings.Embedder      = (*Embedder)(nil)
	_ embeddings.ImageEmbedder = (*Embedder)(nil)
)
