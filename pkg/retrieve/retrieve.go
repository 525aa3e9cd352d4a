// Package retrieve grounds a user query in the vector index.
//
// Retrieval embeds the query through the text path, searches the index,
// keeps only matches scoring strictly above the relevance threshold, and
// assembles the surviving chunk texts into a single context string. Media
// urls carried in match metadata are collected as candidates for the
// media policy to judge; retrieval itself never decides what to display.
package retrieve

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vitrineworks/vitrine/pkg/embeddings"
	"github.com/vitrineworks/vitrine/pkg/vector"
)

const (
	// DefaultTopK is effectively unbounded for a single-person corpus.
	DefaultTopK = 100

	// DefaultThreshold is tuned for the bge-small embedding space.
	DefaultThreshold = 0.15

	// Delimiter separates chunk texts inside the context string.
	Delimiter = "\n---\n"
)

// Candidate is a media url discovered during retrieval, grouped by
// project when the match carries a project_id and by chunk id otherwise.
type Candidate struct {
	Key      string
	Title    string
	ImageURL string
	VideoURL string
}

// Grounding is the result of one retrieval pass.
type Grounding struct {
	// Context is the threshold-surviving chunk texts joined by Delimiter.
	// Empty when nothing scored above threshold.
	Context string

	// Candidates preserves first-seen match order.
	Candidates []Candidate

	// ProfileImage is the avatar url when the profile chunk survived,
	// kept out of Candidates so the media policy can gate it separately.
	ProfileImage string
}

// Options tunes retrieval. Zero values select the defaults.
type Options struct {
	TopK      int
	Threshold float32
}

// Engine runs retrieval against one embedder/store pair.
type Engine struct {
	embedder  embeddings.Embedder
	store     vector.Store
	topK      int
	threshold float32
	logger    *zap.Logger
}

func NewEngine(embedder embeddings.Embedder, store vector.Store, opts Options, logger *zap.Logger) *Engine {
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	return &Engine{
		embedder:  embedder,
		store:     store,
		topK:      topK,
		threshold: threshold,
		logger:    logger,
	}
}

// Retrieve embeds the query and collects grounding context and media
// candidates. Matches at or below the threshold contribute nothing.
func (e *Engine) Retrieve(ctx context.Context, query string) (*Grounding, error) {
	embedding, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches, err := e.store.Query(ctx, embedding, e.topK)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	grounding := &Grounding{}
	byKey := map[string]int{}
	var texts []string

	for _, match := range matches {
		e.logger.Debug("match",
			zap.String("id", match.ID),
			zap.Float32("score", match.Score),
		)

		if match.Score <= e.threshold {
			continue
		}

		if text := match.Metadata["text"]; text != "" {
			texts = append(texts, text)
		}

		imageURL := match.Metadata["image_url"]
		videoURL := match.Metadata["video_url"]

		if strings.HasPrefix(match.Metadata["type"], "profile") {
			if imageURL != "" && grounding.ProfileImage == "" {
				grounding.ProfileImage = imageURL
			}
			continue
		}

		if imageURL == "" && videoURL == "" {
			continue
		}

		key := match.Metadata["project_id"]
		if key == "" {
			key = match.ID
		}

		idx, seen := byKey[key]
		if !seen {
			grounding.Candidates = append(grounding.Candidates, Candidate{
				Key:   key,
				Title: match.Metadata["title"],
			})
			idx = len(grounding.Candidates) - 1
			byKey[key] = idx
		}

		candidate := &grounding.Candidates[idx]
		if candidate.ImageURL == "" {
			candidate.ImageURL = imageURL
		}
		if candidate.VideoURL == "" {
			candidate.VideoURL = videoURL
		}
		if candidate.Title == "" {
			candidate.Title = match.Metadata["title"]
		}
	}

	grounding.Context = strings.Join(texts, Delimiter)

	e.logger.Info("retrieval complete",
		zap.Int("matches", len(matches)),
		zap.Int("context_chars", len(grounding.Context)),
		zap.Int("candidates", len(grounding.Candidates)),
	)

	return grounding, nil
}
