// Package gemini implements the generation provider against Google's
// generativelanguage generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vitrineworks/vitrine/pkg/llm"
)

const (
	// DefaultModel balances quality and free-tier quota.
	DefaultModel = "gemini-2.0-flash"

	// DefaultBaseURL is the generativelanguage API root.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	defaultTemperature = 0.5
	defaultMaxTokens   = 1024
)

// Config holds configuration for the Gemini provider.
type Config struct {
	// APIKey is the Google AI Studio key. Required.
	APIKey string

	// BaseURL overrides the API root. Defaults to DefaultBaseURL.
	BaseURL string

	// Model defaults to DefaultModel.
	Model string

	// Owner is the portfolio owner's name, woven into the system prompt.
	Owner string
}

// Provider generates answers through the Gemini API.
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	owner      string
	httpClient *http.Client
}

func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is missing", llm.ErrNotConfigured)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Provider{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		model:   model,
		owner:   cfg.Owner,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) Generate(ctx context.Context, req llm.Request) (string, error) {
	body := generateRequest{
		SystemInstruction: &content{
			Parts: []part{{Text: llm.SystemPrompt(p.owner)}},
		},
		Contents: []content{
			{Role: "user", Parts: []part{{Text: llm.UserContent(req)}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     defaultTemperature,
			MaxOutputTokens: defaultMaxTokens,
		},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", llm.ErrGeneration, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, p.model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", llm.ErrGeneration, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: sending request: %v", llm.ErrGeneration, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", llm.ErrGeneration, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: gemini returned status %d: %s",
			llm.ErrGeneration, resp.StatusCode, string(payload))
	}

	var generated generateResponse
	if err := json.Unmarshal(payload, &generated); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", llm.ErrGeneration, err)
	}
	if generated.Error != nil {
		return "", fmt.Errorf("%w: %s", llm.ErrGeneration, generated.Error.Message)
	}
	if len(generated.Candidates) == 0 || len(generated.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidate returned", llm.ErrGeneration)
	}

	return generated.Candidates[0].Content.Parts[0].Text, nil
}

var _ llm.Provider = (*Provider)(nil)
