// Package servecmder provides the serve command running the HTTP API.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vitrineworks/vitrine/api"
	"github.com/vitrineworks/vitrine/pkg/config"
	embeddingutils "github.com/vitrineworks/vitrine/pkg/embeddings/utils"
	"github.com/vitrineworks/vitrine/pkg/llm"
	"github.com/vitrineworks/vitrine/pkg/llm/provider/gemini"
	"github.com/vitrineworks/vitrine/pkg/llm/provider/groq"
	"github.com/vitrineworks/vitrine/pkg/llm/provider/ollama"
	"github.com/vitrineworks/vitrine/pkg/logger"
	"github.com/vitrineworks/vitrine/pkg/portfolio"
	"github.com/vitrineworks/vitrine/pkg/retrieve"
	vectorutils "github.com/vitrineworks/vitrine/pkg/vector/utils"
)

type ServeCommander struct {
	listen          string
	portfolioPath   string
	owner           string
	vectorProvider  string
	vectorTarget    string
	vectorIndex     string
	embedProvider   string
	embedTarget     string
	embedModel      string
	embedDimensions uint
	genProvider     string
	genTarget       string
	genModel        string
	debug           bool
	logger          *zap.Logger
}

const serveLongDesc string = `Run the Vitrine HTTP API server.

The server exposes:
  GET  /       Health check
  POST /chat   Grounded chat over the portfolio corpus`

const serveShortDesc string = "Run the HTTP API server"

var serveFlagKeys = []string{
	config.FlagAPIListen,
	config.FlagPortfolio,
	config.FlagOwner,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagVectorStoreIdx,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagGenerationProv,
	config.FlagGenerationTgt,
	config.FlagGenerationModel,
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
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
			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlagKeys)
			cmder.applyViper(v)

			return cmder.run(v)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagPortfolio, &cmder.portfolioPath)
	config.AddStringFlag(cmd, config.Flags, config.FlagOwner, &cmder.owner)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreProv, &cmder.vectorProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreTgt, &cmder.vectorTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreIdx, &cmder.vectorIndex)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &cmder.embedProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &cmder.embedTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &cmder.embedModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &cmder.embedDimensions)
	config.AddStringFlag(cmd, config.Flags, config.FlagGenerationProv, &cmder.genProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagGenerationTgt, &cmder.genTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagGenerationModel, &cmder.genModel)

	return cmd
}

// applyViper pulls resolved values out of the viper precedence chain
// (flag > env > config file > default).
func (c *ServeCommander) applyViper(v *viper.Viper) {
	c.listen = v.GetString("api.listen")
	c.portfolioPath = v.GetString("data.portfolio_path")
	c.owner = v.GetString("data.owner")
	c.vectorProvider = v.GetString("vector_store.provider")
	c.vectorTarget = v.GetString("vector_store.target")
	c.vectorIndex = v.GetString("vector_store.index")
	c.embedProvider = v.GetString("embedding.provider")
	c.embedTarget = v.GetString("embedding.target")
	c.embedModel = v.GetString("embedding.model")
	c.embedDimensions = v.GetUint("embedding.dimensions")
	c.genProvider = v.GetString("generation.provider")
	c.genTarget = v.GetString("generation.target")
	c.genModel = v.GetString("generation.model")
}

func (c *ServeCommander) run(v *viper.Viper) error {
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

	engine := retrieve.NewEngine(embedder, store, retrieve.Options{
		TopK:      v.GetInt("retrieval.top_k"),
		Threshold: float32(v.GetFloat64("retrieval.threshold")),
	}, c.logger)

	registry := c.buildRegistry(secrets)

	server := api.NewServer(api.Config{
		ListenAddr: c.listen,
		Keywords:   corpus.KeywordMap(),
	}, engine, registry, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}

// buildRegistry registers every generation provider whose credentials
// are present. A provider missing its key is skipped with a warning; if
// that leaves the default unregistered, chat requests report the
// configuration error.
func (c *ServeCommander) buildRegistry(secrets config.Secrets) *llm.Registry {
	registry := llm.NewRegistry(c.genProvider)

	if groqProvider, err := groq.New(groq.Config{
		APIKey: secrets.GroqAPIKey,
		Model:  c.providerModel("groq"),
		Owner:  c.owner,
	}); err != nil {
		c.logger.Warn("groq provider unavailable", zap.Error(err))
	} else {
		registry.Register(groqProvider)
	}

	if geminiProvider, err := gemini.New(gemini.Config{
		APIKey: secrets.GeminiAPIKey,
		Model:  c.providerModel("gemini"),
		Owner:  c.owner,
	}); err != nil {
		c.logger.Warn("gemini provider unavailable", zap.Error(err))
	} else {
		registry.Register(geminiProvider)
	}

	registry.Register(ollama.New(ollama.Config{
		BaseURL: c.genTarget,
		Model:   c.providerModel("ollama"),
		Owner:   c.owner,
	}))

	return registry
}

// providerModel returns the configured generation model, but only for
// the provider it was configured for; other providers use their own
// defaults.
func (c *ServeCommander) providerModel(provider string) string {
	if c.genProvider == provider {
		return c.genModel
	}
	return ""
}

func (c *ServeCommander) storeAPIKey(secrets config.Secrets) string {
	switch c.vectorProvider {
	case "qdrant":
		return secrets.QdrantAPIKey
	default:
		return secrets.PineconeAPIKey
	}
}
