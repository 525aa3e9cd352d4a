// Package ingestcmder provides the ingest command rebuilding the vector
// index from the portfolio corpus.
package ingestcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vitrineworks/vitrine/pkg/config"
	embeddingutils "github.com/vitrineworks/vitrine/pkg/embeddings/utils"
	"github.com/vitrineworks/vitrine/pkg/ingest"
	"github.com/vitrineworks/vitrine/pkg/logger"
	"github.com/vitrineworks/vitrine/pkg/portfolio"
	vectorutils "github.com/vitrineworks/vitrine/pkg/vector/utils"
)

type IngestCommander struct {
	portfolioPath   string
	vectorProvider  string
	vectorTarget    string
	vectorIndex     string
	embedProvider   string
	embedTarget     string
	embedModel      string
	embedDimensions uint
	debug           bool
	logger          *zap.Logger
}

const ingestLongDesc string = `Rebuild the vector index from the portfolio corpus.

Ingestion clears the index, chunks the portfolio JSON document, embeds
every chunk (and project images when the embedder supports them), and
upserts the result in one batch.`

const ingestShortDesc string = "Rebuild the vector index"

var ingestFlagKeys = []string{
	config.FlagPortfolio,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagVectorStoreIdx,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
}

func NewIngestCmd() *cobra.Command {
	cmder := &IngestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, err := cmd.Flags().GetString("config-dir")
			if err != nil {
				return fmt.Errorf("could not get config-dir flag: %v", err)
			}

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, ingestFlagKeys)
			cmder.applyViper(v)

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagPortfolio, &cmder.portfolioPath)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreProv, &cmder.vectorProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreTgt, &cmder.vectorTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreIdx, &cmder.vectorIndex)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &cmder.embedProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &cmder.embedTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &cmder.embedModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &cmder.embedDimensions)

	return cmd
}

func (c *IngestCommander) applyViper(v *viper.Viper) {
	c.portfolioPath = v.GetString("data.portfolio_path")
	c.vectorProvider = v.GetString("vector_store.provider")
	c.vectorTarget = v.GetString("vector_store.target")
	c.vectorIndex = v.GetString("vector_store.index")
	c.embedProvider = v.GetString("embedding.provider")
	c.embedTarget = v.GetString("embedding.target")
	c.embedModel = v.GetString("embedding.model")
	c.embedDimensions = v.GetUint("embedding.dimensions")
}

func (c *IngestCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	secrets := config.LoadSecrets()

	corpus, err := portfolio.Load(c.portfolioPath)
	if err != nil {
		return fmt.Errorf("loading portfolio: %w", err)
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: c.embedProvider,
		TargetURL:    c.embedTarget,
		Model:        c.embedModel,
		APIKey:       secrets.HuggingFaceAPIKey,
		Dimensions:   int(c.embedDimensions),
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	defer embedder.Close()

	store, err := vectorutils.NewStore(&vectorutils.NewStoreOpts{
		ProviderType: c.vectorProvider,
		TargetURL:    c.vectorTarget,
		IndexName:    c.vectorIndex,
		APIKey:       c.storeAPIKey(secrets),
		Dimensions:   int(c.embedDimensions),
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating vector store: %w", err)
	}
	defer store.Close()

	pipeline := ingest.NewPipeline(embedder, store, ingest.Options{}, c.logger)

	report, err := pipeline.Run(ctx, corpus)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	c.logger.Info("ingestion finished",
		zap.Int("attempted", report.Attempted),
		zap.Int("succeeded", report.Succeeded),
		zap.Strings("failed_ids", report.FailedIDs),
	)

	return nil
}

func (c *IngestCommander) storeAPIKey(secrets config.Secrets) string {
	switch c.vectorProvider {
	case "qdrant":
		return secrets.QdrantAPIKey
	default:
		return secrets.PineconeAPIKey
	}
}
