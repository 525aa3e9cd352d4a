// Package pinecone provides a Pinecone vector index driver implementation.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vitrineworks/vitrine/pkg/retry"
	"github.com/vitrineworks/vitrine/pkg/vector"
)

const (
	// DefaultIndexName is the default index for portfolio embeddings.
	DefaultIndexName = "portfolio-rag"

	// DefaultControlURL is the Pinecone control plane URL.
	DefaultControlURL = "https://api.pinecone.io"

	defaultCloud  = "aws"
	defaultRegion = "us-east-1"
)

// Driver implements vector.Store against Pinecone's REST API. The control
// plane manages index lifecycle; data operations go to the index host
// reported by describe.
type Driver struct {
	controlURL string
	indexName  string
	dimensions int
	cloud      string
	region     string
	apiKey     string
	httpClient *http.Client
	policy     retry.Policy
	logger     *zap.Logger

	mu      sync.Mutex
	dataURL string
}

// Config holds configuration for the Pinecone driver.
type Config struct {
	// APIKey is the Pinecone API key. Required.
	APIKey string

	// IndexName is the index to manage. Defaults to DefaultIndexName.
	IndexName string

	// Dimensions is the embedding dimension the index must declare.
	// Required; drives the destructive recreate on mismatch.
	Dimensions int

	// ControlURL overrides the control plane URL. Defaults to
	// DefaultControlURL.
	ControlURL string

	// Cloud and Region select the serverless spec. Default aws/us-east-1.
	Cloud  string
	Region string

	// MaxRetries bounds readiness and deletion polling.
	MaxRetries int

	// RetryDelay is the initial poll delay.
	RetryDelay time.Duration

	// MaxRetryDelay caps the poll backoff.
	MaxRetryDelay time.Duration
}

type indexDescription struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
	Host      string `json:"host"`
	Status    struct {
		Ready bool   `json:"ready"`
		State string `json:"state"`
	} `json:"status"`
}

type createIndexRequest struct {
	Name      string    `json:"name"`
	Dimension int       `json:"dimension"`
	Metric    string    `json:"metric"`
	Spec      indexSpec `json:"spec"`
}

type indexSpec struct {
	Serverless serverlessSpec `json:"serverless"`
}

type serverlessSpec struct {
	Cloud  string `json:"cloud"`
	Region string `json:"region"`
}

type upsertRequest struct {
	Vectors []upsertVector `json:"vectors"`
}

type upsertVector struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string            `json:"id"`
		Score    float32           `json:"score"`
		Metadata map[string]string `json:"metadata"`
	} `json:"matches"`
}

type deleteRequest struct {
	DeleteAll bool `json:"deleteAll"`
}

// NewDriver creates a new Pinecone vector driver.
func NewDriver(c Config, logger *zap.Logger) (*Driver, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("%w: PINECONE_API_KEY is missing", vector.ErrNotConfigured)
	}
	if c.Dimensions <= 0 {
		return nil, fmt.Errorf("pinecone dimensions must be positive, got %d", c.Dimensions)
	}

	indexName := c.IndexName
	if indexName == "" {
		indexName = DefaultIndexName
	}
	controlURL := c.ControlURL
	if controlURL == "" {
		controlURL = DefaultControlURL
	}
	cloud := c.Cloud
	if cloud == "" {
		cloud = defaultCloud
	}
	region := c.Region
	if region == "" {
		region = defaultRegion
	}
	maxRetries := c.MaxRetries
	if maxRetries == 0 {
		maxRetries = 30
	}
	delay := c.RetryDelay
	if delay == 0 {
		delay = 2 * time.Second
	}
	maxDelay := c.MaxRetryDelay
	if maxDelay == 0 {
		maxDelay = 10 * time.Second
	}

	return &Driver{
		controlURL: controlURL,
		indexName:  indexName,
		dimensions: c.Dimensions,
		cloud:      cloud,
		region:     region,
		apiKey:     c.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		policy: retry.NewPolicy(maxRetries, delay, maxDelay),
		logger: logger,
	}, nil
}

// EnsureReady creates the index if absent, destructively recreates it on a
// dimension mismatch, and blocks until Pinecone reports it ready. The
// resolved data-plane host is cached for subsequent calls.
func (d *Driver) EnsureReady(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dataURL != "" {
		return nil
	}

	desc, found, err := d.describeIndex(ctx)
	if err != nil {
		return err
	}

	if found && desc.Dimension != d.dimensions {
		d.logger.Warn("index dimension mismatch, recreating",
			zap.String("index", d.indexName),
			zap.Int("found", desc.Dimension),
			zap.Int("expected", d.dimensions),
		)
		if err := d.deleteIndex(ctx); err != nil {
			return err
		}
		// Deletion is eventually consistent; wait for the name to free up.
		if err := d.waitDeleted(ctx); err != nil {
			return err
		}
		found = false
	}

	if !found {
		d.logger.Info("creating index",
			zap.String("index", d.indexName),
			zap.Int("dimensions", d.dimensions),
			zap.String("metric", "cosine"),
		)
		if err := d.createIndex(ctx); err != nil {
			return err
		}
	}

	host, err := d.waitReady(ctx)
	if err != nil {
		return err
	}

	d.dataURL = normalizeHost(host)
	d.logger.Debug("index ready",
		zap.String("index", d.indexName),
		zap.String("host", d.dataURL),
	)

	return nil
}

// Upsert stores vectors, ensuring the index exists with the right schema
// first.
func (d *Driver) Upsert(ctx context.Context, vectors []vector.Vector) error {
	if len(vectors) == 0 {
		return nil
	}
	if err := d.EnsureReady(ctx); err != nil {
		return err
	}

	req := upsertRequest{Vectors: make([]upsertVector, len(vectors))}
	for i, v := range vectors {
		req.Vectors[i] = upsertVector{
			ID:       v.ID,
			Values:   v.Values,
			Metadata: v.Metadata,
		}
	}

	if err := d.postJSON(ctx, d.dataURL+"/vectors/upsert", req, nil); err != nil {
		return fmt.Errorf("upserting vectors: %w", err)
	}

	d.logger.Debug("upserted vectors to pinecone",
		zap.Int("count", len(vectors)),
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

	req := queryRequest{
		Vector:          embedding,
		TopK:            topK,
		IncludeMetadata: true,
	}

	var resp queryResponse
	if err := d.postJSON(ctx, d.dataURL+"/query", req, &resp); err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	matches := make([]vector.QueryMatch, len(resp.Matches))
	for i, m := range resp.Matches {
		matches[i] = vector.QueryMatch{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		}
	}

	d.logger.Debug("queried pinecone",
		zap.Int("results", len(matches)),
	)

	return matches, nil
}

// Clear removes every vector in the index. Failures are logged and
// swallowed: an already-empty or freshly-recreated index is an acceptable
// outcome for the clear-then-rebuild ingestion discipline.
func (d *Driver) Clear(ctx context.Context) error {
	if err := d.EnsureReady(ctx); err != nil {
		d.logger.Warn("clear skipped, index not ready", zap.Error(err))
		return nil
	}

	if err := d.postJSON(ctx, d.dataURL+"/vectors/delete", deleteRequest{DeleteAll: true}, nil); err != nil {
		d.logger.Warn("failed to clear index", zap.Error(err))
		return nil
	}

	d.logger.Info("cleared index", zap.String("index", d.indexName))
	return nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	return nil
}

func (d *Driver) describeIndex(ctx context.Context) (*indexDescription, bool, error) {
	url := fmt.Sprintf("%s/indexes/%s", d.controlURL, d.indexName)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating describe request: %w", err)
	}
	req.Header.Set("Api-Key", d.apiKey)

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
		return nil, false, fmt.Errorf("describe index failed: status %d: %s", resp.StatusCode, string(body))
	}

	var desc indexDescription
	if err := json.NewDecoder(resp.Body).Decode(&desc); err != nil {
		return nil, false, fmt.Errorf("decoding describe response: %w", err)
	}

	return &desc, true, nil
}

func (d *Driver) createIndex(ctx context.Context) error {
	req := createIndexRequest{
		Name:      d.indexName,
		Dimension: d.dimensions,
		Metric:    "cosine",
		Spec: indexSpec{
			Serverless: serverlessSpec{Cloud: d.cloud, Region: d.region},
		},
	}
	if err := d.postJSON(ctx, d.controlURL+"/indexes", req, nil); err != nil {
		return fmt.Errorf("creating index: %w", err)
	}
	return nil
}

func (d *Driver) deleteIndex(ctx context.Context) error {
	url := fmt.Sprintf("%s/indexes/%s", d.controlURL, d.indexName)
	req, err := http.NewRequestWithContext(ctx, "DELETE", url, nil)
	if err != nil {
		return fmt.Errorf("creating delete request: %w", err)
	}
	req.Header.Set("Api-Key", d.apiKey)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", vector.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete index failed: status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// waitDeleted polls describe until the index name reports not found.
func (d *Driver) waitDeleted(ctx context.Context) error {
	return d.policy.Do(ctx, func() error {
		_, found, err := d.describeIndex(ctx)
		if err != nil {
			return err
		}
		if found {
			return retry.Transient(fmt.Errorf("index %q still exists", d.indexName))
		}
		return nil
	})
}

// waitReady polls describe until the provider reports ready and returns
// the data-plane host.
func (d *Driver) waitReady(ctx context.Context) (string, error) {
	var host string
	err := d.policy.Do(ctx, func() error {
		desc, found, err := d.describeIndex(ctx)
		if err != nil {
			return err
		}
		if !found {
			return retry.Transient(fmt.Errorf("index %q not visible yet", d.indexName))
		}
		if !desc.Status.Ready || desc.Host == "" {
			return retry.Transient(fmt.Errorf("index %q not ready (state %s)", d.indexName, desc.Status.State))
		}
		host = desc.Host
		return nil
	})
	if err != nil {
		return "", err
	}
	return host, nil
}

func (d *Driver) postJSON(ctx context.Context, url string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Api-Key", d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", vector.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pinecone returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

// normalizeHost prepends https:// to bare hosts as returned by describe.
func normalizeHost(host string) string {
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "https://" + host
}

// Ensure Driver implements vector.Store
var _ vector.Store = (*Driver)(nil)
