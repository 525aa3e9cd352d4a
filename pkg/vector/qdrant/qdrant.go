// Package qdrant provides a Qdrant vector index driver implementation.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vitrineworks/vitrine/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection for portfolio
	// embeddings.
	DefaultCollectionName = "portfolio-rag"
)

// Driver implements vector.Store using Qdrant's REST API. Qdrant point ids
// must be UUIDs or integers, so chunk ids are mapped to deterministic
// name-based UUIDs and the original id travels in the payload.
type Driver struct {
	baseURL    string
	collection string
	dimensions int
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// URL is the Qdrant server URL (e.g., "http://localhost:6333").
	URL string

	// Collection is the collection to manage. Defaults to
	// DefaultCollectionName.
	Collection string

	// Dimensions is the embedding dimension the collection must declare.
	Dimensions int

	// APIKey is optional for unsecured local deployments.
	APIKey string

	// Timeout bounds each request. Defaults to 60s.
	Timeout time.Duration
}

type collectionInfo struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

type point struct {
	ID      string            `json:"id"`
	Vector  []float32         `json:"vector"`
	Payload map[string]string `json:"payload"`
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type searchResponse struct {
	Result []struct {
		Score   float32           `json:"score"`
		Payload map[string]string `json:"payload"`
	} `json:"result"`
}

// NewDriver creates a new Qdrant vector driver.
func NewDriver(c Config, logger *zap.Logger) (*Driver, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("qdrant URL is required")
	}
	if c.Dimensions <= 0 {
		return nil, fmt.Errorf("qdrant dimensions must be positive, got %d", c.Dimensions)
	}

	collection := c.Collection
	if collection == "" {
		collection = DefaultCollectionName
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Driver{
		baseURL:    c.URL,
		collection: collection,
		dimensions: c.Dimensions,
		apiKey:     c.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

// EnsureReady creates the collection if absent and destructively recreates
// it when the declared vector size disagrees with the configured dimension.
// Qdrant collection creation is synchronous, so no readiness polling is
// needed.
func (d *Driver) EnsureReady(ctx context.Context) error {
	info, found, err := d.getCollection(ctx)
	if err != nil {
		return err
	}

	if found && info.Result.Config.Params.Vectors.Size != d.dimensions {
		d.logger.Warn("collection dimension mismatch, recreating",
			zap.String("collection", d.collection),
			zap.Int("found", info.Result.Config.Params.Vectors.Size),
			zap.Int("expected", d.dimensions),
		)
		if err := d.do(ctx, "DELETE", d.collectionURL(), nil, nil); err != nil {
			return fmt.Errorf("deleting collection: %w", err)
		}
		found = false
	}

	if !found {
		body := map[string]any{
			"vectors": map[string]any{
				"size":     d.dimensions,
				"distance": "Cosine",
			},
		}
		if err := d.do(ctx, "PUT", d.collectionURL(), body, nil); err != nil {
			return fmt.Errorf("creating collection: %w", err)
		}
		d.logger.Info("created collection",
			zap.String("collection", d.collection),
			zap.Int("dimensions", d.dimensions),
		)
	}

	return nil
}

// Upsert stores vectors, ensuring the collection exists with the right
// schema first.
func (d *Driver) Upsert(ctx context.Context, vectors []vector.Vector) error {
	if len(vectors) == 0 {
		return nil
	}
	if err := d.EnsureReady(ctx); err != nil {
		return err
	}

	points := make([]point, len(vectors))
	for i, v := range vectors {
		payload := make(map[string]string, len(v.Metadata)+1)
		for k, val := range v.Metadata {
			payload[k] = val
		}
		payload["id"] = v.ID

		points[i] = point{
			ID:      uuid.NewSHA1(uuid.NameSpaceOID, []byte(v.ID)).String(),
			Vector:  v.Values,
			Payload: payload,
		}
	}

	url := d.collectionURL() + "/points?wait=true"
	if err := d.do(ctx, "PUT", url, map[string]any{"points": points}, nil); err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	d.logger.Debug("upserted points to qdrant",
		zap.Int("count", len(points)),
	)

	return nil
}

// Query returns the topK most similar vectors ranked descending by
// cosine similarity.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryMatch, error) {
	if topK <= 0 {
		topK = 10
	}
	if err := d.EnsureReady(ctx); err != nil {
		return nil, err
	}

	req := searchRequest{
		Vector:      embedding,
		Limit:       topK,
		WithPayload: true,
	}

	var resp searchResponse
	url := d.collectionURL() + "/points/search"
	if err := d.do(ctx, "POST", url, req, &resp); err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	matches := make([]vector.QueryMatch, len(resp.Result))
	for i, r := range resp.Result {
		id := r.Payload["id"]
		metadata := make(map[string]string, len(r.Payload))
		for k, v := range r.Payload {
			if k == "id" {
				continue
			}
			metadata[k] = v
		}
		matches[i] = vector.QueryMatch{
			ID:       id,
			Score:    r.Score,
			Metadata: metadata,
		}
	}

	return matches, nil
}

// Clear removes every point in the collection. Failures are logged and
// swallowed.
func (d *Driver) Clear(ctx context.Context) error {
	if err := d.EnsureReady(ctx); err != nil {
		d.logger.Warn("clear skipped, collection not ready", zap.Error(err))
		return nil
	}

	url := d.collectionURL() + "/points/delete?wait=true"
	if err := d.do(ctx, "POST", url, map[string]any{"filter": map[string]any{}}, nil); err != nil {
		d.logger.Warn("failed to clear collection", zap.Error(err))
		return nil
	}

	d.logger.Info("cleared collection", zap.String("collection", d.collection))
	return nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	return nil
}

func (d *Driver) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", d.baseURL, d.collection)
}

func (d *Driver) getCollection(ctx context.Context) (*collectionInfo, bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", d.collectionURL(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating get request: %w", err)
	}
	d.setHeaders(req)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", vector.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, false, fmt.Errorf("get collection failed: status %d: %s", resp.StatusCode, string(body))
	}

	var info collectionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, false, fmt.Errorf("decoding collection info: %w", err)
	}

	return &info, true, nil
}

func (d *Driver) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	d.setHeaders(req)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", vector.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

func (d *Driver) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if d.apiKey != "" {
		req.Header.Set("api-key", d.apiKey)
	}
}

// Ensure Driver implements vector.Store
var _ vector.Store = (*Driver)(nil)
