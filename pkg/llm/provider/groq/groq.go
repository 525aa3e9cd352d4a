// Package groq implements the generation provider against Groq's
// OpenAI-compatible chat completions API. It is the default provider.
package groq

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
	// DefaultModel is the current flagship Llama on Groq.
	DefaultModel = "llama-3.3-70b-versatile"

	// DefaultBaseURL is Groq's OpenAI-compatible endpoint root.
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	defaultTemperature = 0.5
	defaultMaxTokens   = 1024
)

// Config holds configuration for the Groq provider.
type Config struct {
	// APIKey is the Groq API key. Required.
	APIKey string

	// BaseURL overrides the API root. Defaults to DefaultBaseURL.
	BaseURL string

	// Model defaults to DefaultModel.
	Model string

	// Owner is the portfolio owner's name, woven into the system prompt.
	Owner string
}

// Provider generates answers through Groq.
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	owner      string
	httpClient *http.Client
}

// New creates a Groq provider. A missing API key is a configuration
// error surfaced at construction, not at request time.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: GROQ_API_KEY is missing", llm.ErrNotConfigured)
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
	return "groq"
}

// Generate runs one chat completion. No retries: a live-query failure is
// terminal for that request.
func (p *Provider) Generate(ctx context.Context, req llm.Request) (string, error) {
	body := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: llm.SystemPrompt(p.owner)},
			{Role: "user", Content: llm.UserContent(req)},
		},
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", llm.ErrGeneration, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST",
		p.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", llm.ErrGeneration, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

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
		return "", fmt.Errorf("%w: groq returned status %d: %s",
			llm.ErrGeneration, resp.StatusCode, string(payload))
	}

	var completion chatResponse
	if err := json.Unmarshal(payload, &completion); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", llm.ErrGeneration, err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("%w: %s", llm.ErrGeneration, completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: no completion returned", llm.ErrGeneration)
	}

	return completion.Choices[0].Message.Content, nil
}

var _ llm.Provider = (*Provider)(nil)
