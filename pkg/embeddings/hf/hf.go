// Package hf implements pkg/embeddings' Embedder against the Hugging Face
// Inference API.
package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vitrineworks/vitrine/pkg/embeddings"
	"github.com/vitrineworks/vitrine/pkg/retry"
)

const (
	// DefaultModel is the default sentence embedding model.
	DefaultModel = "BAAI/bge-small-en-v1.5"

	// DefaultBaseURL is the Hugging Face Inference API URL.
	DefaultBaseURL = "https://api-inference.huggingface.co"

	// DefaultDimensions is the output dimension of DefaultModel.
	DefaultDimensions = 384
)

// Embedder wraps the Hugging Face feature-extraction API.
type Embedder struct {
	baseURL    string
	model      string
	apiKey     string
	dimensions int
	httpClient *http.Client
	policy     retry.Policy
}

// EmbedderConfig holds configuration for the Hugging Face embedder.
type EmbedderConfig struct {
	// BaseURL overrides the inference API URL. Defaults to DefaultBaseURL.
	BaseURL string

	// Model is the embedding model id. Defaults to DefaultModel.
	Model string

	// APIKey is the Hugging Face API token. Required.
	APIKey string

	// Dimensions is the model's output dimension. Defaults to
	// DefaultDimensions.
	Dimensions int

	// MaxRetries bounds attempts against warm-up and rate-limit responses.
	MaxRetries int

	// RetryDelay is the initial backoff delay.
	RetryDelay time.Duration

	// MaxRetryDelay caps the backoff.
	MaxRetryDelay time.Duration
}

// embedRequest is the feature-extraction request body. WaitForModel asks
// the API to block instead of returning 503 while the model loads.
type embedRequest struct {
	Inputs  string       `json:"inputs"`
	Options embedOptions `json:"options"`
}

type embedOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// NewEmbedder creates an embedder using the Hugging Face Inference API.
// A missing API key is a configuration error, not a transient one.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: HUGGINGFACE_API_KEY is missing", embeddings.ErrNotConfigured)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = DefaultDimensions
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 5
	}
	delay := cfg.RetryDelay
	if delay == 0 {
		delay = time.Second
	}
	maxDelay := cfg.MaxRetryDelay
	if maxDelay == 0 {
		maxDelay = 10 * time.Second
	}

	return &Embedder{
		baseURL:    baseURL,
		model:      model,
		apiKey:     cfg.APIKey,
		dimensions: dimensions,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		policy: retry.NewPolicy(maxRetries, delay, maxDelay),
	}, nil
}

// EmbedText converts text into a unit-length vector embedding. Warm-up
// (503) and rate-limit (429) responses are retried with backoff; other
// failures surface immediately.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	var embedding []float32

	err := e.policy.Do(ctx, func() error {
		vec, err := e.embedOnce(ctx, text)
		if err != nil {
			return err
		}
		embedding = vec
		return nil
	})
	if err != nil {
		return nil, err
	}

	return embeddings.Normalize(embedding), nil
}

func (e *Embedder) embedOnce(ctx context.Context, text string) ([]float32, error) {
	reqBody := embedRequest{
		Inputs:  text,
		Options: embedOptions{WaitForModel: true},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", embeddings.ErrEmbedding, err)
	}

	url := fmt.Sprintf("%s/models/%s", e.baseURL, e.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", embeddings.ErrEmbedding, err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("%w: sending request: %v", embeddings.ErrEmbedding, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests:
		body, _ := io.ReadAll(resp.Body)
		return nil, retry.Transient(fmt.Errorf("%w: hugging face returned status %d: %s",
			embeddings.ErrEmbedding, resp.StatusCode, string(body)))
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: hugging face returned status %d: %s",
			embeddings.ErrEmbedding, resp.StatusCode, string(body))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("%w: reading response: %v", embeddings.ErrEmbedding, err))
	}

	return decodeEmbedding(payload)
}

// decodeEmbedding accepts both response shapes the feature-extraction API
// produces: a flat vector, or a single-element batch of vectors.
func decodeEmbedding(payload []byte) ([]float32, error) {
	var flat []float32
	if err := json.Unmarshal(payload, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}

	var nested [][]float32
	if err := json.Unmarshal(payload, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}

	return nil, fmt.Errorf("%w: no embedding returned", embeddings.ErrEmbedding)
}

// Dimensions returns the embedding dimension.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
