// Package ingest rebuilds the vector index from the portfolio corpus.
//
// Ingestion is clear-then-rebuild: the index is wholly cleared, then every
// chunk is embedded and upserted in one batch. There is no incremental
// mode, which guarantees the index never retains vectors for records
// removed from the corpus.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vitrineworks/vitrine/pkg/chunker"
	"github.com/vitrineworks/vitrine/pkg/embeddings"
	"github.com/vitrineworks/vitrine/pkg/portfolio"
	"github.com/vitrineworks/vitrine/pkg/vector"
)

// DefaultRate paces embedding calls to respect upstream rate limits.
var DefaultRate = rate.Limit(2)

// Report summarizes one ingestion run.
type Report struct {
	// Attempted is the number of vectors attempted (chunks plus images).
	Attempted int

	// Succeeded is the number of vectors upserted.
	Succeeded int

	// FailedIDs lists vector ids that failed to embed.
	FailedIDs []string
}

// Pipeline orchestrates chunking, embedding, and index replacement.
type Pipeline struct {
	embedder embeddings.Embedder
	store    vector.Store
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// Options configures pipeline behavior.
type Options struct {
	// Rate paces embedding calls. Defaults to DefaultRate.
	Rate rate.Limit
}

// NewPipeline creates an ingestion pipeline. If embedder also implements
// embeddings.ImageEmbedder, project images are embedded as sibling vectors
// in the same space.
func NewPipeline(embedder embeddings.Embedder, store vector.Store, opts Options, logger *zap.Logger) *Pipeline {
	limit := opts.Rate
	if limit == 0 {
		limit = DefaultRate
	}

	return &Pipeline{
		embedder: embedder,
		store:    store,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
	}
}

// Run fully rebuilds the index from the corpus. A single chunk's or
// image's embedding failure is logged and excluded; it never aborts the
// run. An empty final batch is reported as a failure without upserting.
func (p *Pipeline) Run(ctx context.Context, corpus *portfolio.Portfolio) (*Report, error) {
	if err := p.store.Clear(ctx); err != nil {
		// Clear is best-effort; a failed clear on a fresh index is fine.
		p.logger.Warn("clearing index failed", zap.Error(err))
	}

	chunks := chunker.Build(corpus)
	p.logger.Info("built chunks", zap.Int("count", len(chunks)))

	imageEmbedder, embedImages := p.embedder.(embeddings.ImageEmbedder)

	report := &Report{}
	var vectors []vector.Vector

	for _, chunk := range chunks {
		report.Attempted++
		if err := p.limiter.Wait(ctx); err != nil {
			return report, err
		}

		embedding, err := p.embedder.EmbedText(ctx, chunk.Text)
		if err != nil {
			p.logger.Error("embedding chunk failed",
				zap.String("id", chunk.ID),
				zap.Error(err),
			)
			report.FailedIDs = append(report.FailedIDs, chunk.ID)
			continue
		}

		metadata := map[string]string{
			"text": chunk.Text,
			"type": chunk.Type,
		}
		for k, v := range chunk.Metadata {
			metadata[k] = v
		}

		vectors = append(vectors, vector.Vector{
			ID:       chunk.ID,
			Values:   embedding,
			Metadata: chunker.CleanMetadata(metadata),
		})

		imageURL := chunk.Metadata["image_url"]
		if !embedImages || !strings.HasPrefix(imageURL, "http") {
			continue
		}

		imageID := chunk.ID + "-image"
		report.Attempted++
		if err := p.limiter.Wait(ctx); err != nil {
			return report, err
		}

		imageEmbedding, err := imageEmbedder.EmbedImage(ctx, imageURL)
		if err != nil {
			p.logger.Error("embedding image failed",
				zap.String("id", imageID),
				zap.String("url", imageURL),
				zap.Error(err),
			)
			report.FailedIDs = append(report.FailedIDs, imageID)
			continue
		}

		imageMetadata := map[string]string{
			"type":      chunk.Type + "_image",
			"parent_id": chunk.ID,
		}
		for k, v := range chunk.Metadata {
			imageMetadata[k] = v
		}

		vectors = append(vectors, vector.Vector{
			ID:       imageID,
			Values:   imageEmbedding,
			Metadata: chunker.CleanMetadata(imageMetadata),
		})
	}

	if len(vectors) == 0 {
		return report, fmt.Errorf("no vectors to upsert")
	}

	if err := p.store.Upsert(ctx, vectors); err != nil {
		return report, fmt.Errorf("upserting vectors: %w", err)
	}

	report.Succeeded = len(vectors)
	p.logger.Info("ingestion complete",
		zap.Int("attempted", report.Attempted),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", len(report.FailedIDs)),
	)

	return report, nil
}
