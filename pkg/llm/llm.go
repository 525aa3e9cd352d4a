// Package llm defines the generation provider capability and the shared
// prompt contract all providers speak.
package llm

import (
	"context"
	"errors"
)

// ErrGeneration wraps any provider failure during generation.
var ErrGeneration = errors.New("generation error")

// ErrNotConfigured indicates a missing credential. Never retried.
var ErrNotConfigured = errors.New("provider not configured")

// Turn is one message of prior conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries everything a provider needs for one generation.
type Request struct {
	// Query is the user's raw question.
	Query string

	// Context is the retrieved grounding text, possibly empty. An empty
	// context is legitimate; the provider still generates and the model
	// is expected to say it doesn't know.
	Context string

	// History holds prior turns, oldest first.
	History []Turn
}

// Provider generates a single-shot answer for a grounded request.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}
