package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/vitrineworks/vitrine/pkg/llm"
	"github.com/vitrineworks/vitrine/pkg/retrieve"
)

// Retriever grounds a query in the vector index.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (*retrieve.Grounding, error)
}

// Server is the HTTP API server for the portfolio chatbot.
type Server struct {
	config    Config
	retriever Retriever
	registry  *llm.Registry
	logger    *zap.Logger
	app       *fiber.App
}

// NewServer creates a new API server. The retriever and provider
// registry are injected so the command layer owns construction.
func NewServer(config Config, retriever Retriever, registry *llm.Registry, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Frontend access from any origin.
	app.Use(cors.New())

	s := &Server{
		config:    config,
		retriever: retriever,
		registry:  registry,
		logger:    logger,
		app:       app,
	}

	app.Get("/", s.handleHealth)
	app.Post("/chat", s.handleChat)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
