package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vitrineworks/vitrine/pkg/compose"
	"github.com/vitrineworks/vitrine/pkg/llm"
	"github.com/vitrineworks/vitrine/pkg/media"
)

// ChatRequest is the POST /chat request body.
type ChatRequest struct {
	Message       string     `json:"message"`
	ModelProvider string     `json:"model_provider,omitempty"`
	History       []llm.Turn `json:"history,omitempty"`
}

// ChatResponse is the POST /chat response body.
type ChatResponse struct {
	Response    string   `json:"response"`
	Provider    string   `json:"provider"`
	ContextUsed bool     `json:"context_used"`
	Images      []string `json:"images"`
	Videos      []string `json:"videos,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ErrorResponse is the error body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleChat runs the full query pipeline: retrieve, generate, select
// media, compose. Downstream failures surface as 500 with a descriptive
// message and are never retried inside the request.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid request body",
		})
	}

	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "message is required",
		})
	}

	requestID := uuid.NewString()
	log := s.logger.With(zap.String("request_id", requestID))
	log.Info("received query",
		zap.String("message", req.Message),
		zap.String("provider", req.ModelProvider),
	)

	grounding, err := s.retriever.Retrieve(c.Context(), req.Message)
	if err != nil {
		log.Error("retrieval failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "retrieval failed: " + err.Error(),
		})
	}

	provider, err := s.registry.Get(req.ModelProvider)
	if err != nil {
		log.Error("provider resolution failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: err.Error(),
		})
	}

	// An empty context is legitimate; the model says it doesn't know.
	generated, err := provider.Generate(c.Context(), llm.Request{
		Query:   req.Message,
		Context: grounding.Context,
		History: req.History,
	})
	if err != nil {
		log.Error("generation failed",
			zap.String("provider", provider.Name()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "generation failed: " + err.Error(),
		})
	}

	sel := media.Select(req.Message, generated, grounding, s.config.Keywords)
	result := compose.Answer(generated, sel)

	log.Info("chat complete",
		zap.String("provider", provider.Name()),
		zap.Bool("context_used", grounding.Context != ""),
		zap.Int("images", len(sel.Images)),
		zap.Int("videos", len(sel.Videos)),
	)

	images := make([]string, 0, len(sel.Images))
	for _, img := range sel.Images {
		images = append(images, img.URL)
	}
	var videos []string
	for _, vid := range sel.Videos {
		videos = append(videos, vid.URL)
	}

	return c.JSON(ChatResponse{
		Response:    result.Text,
		Provider:    provider.Name(),
		ContextUsed: grounding.Context != "",
		Images:      images,
		Videos:      videos,
		Suggestions: result.Suggestions,
	})
}
