package handler

import (
	"errors"

	"github.com/arturoeanton/go-page-rag-ollama/internal/port"
	"github.com/arturoeanton/go-page-rag-ollama/internal/service"
	"github.com/gofiber/fiber/v3"
)

// AskHandler answers questions against an ingested page.
type AskHandler struct {
	askService *service.AskService
}

// NewAskHandler creates a new ask handler.
func NewAskHandler(askService *service.AskService) *AskHandler {
	return &AskHandler{askService: askService}
}

// Register sets up ai routes.
func (h *AskHandler) Register(router fiber.Router) {
	ai := router.Group("/ai")
	ai.Post("/ask", h.Ask)
}

// Ask runs the hybrid retrieval + grounded generation pipeline. A question the
// page cannot answer is a valid outcome (200 with the don't-know answer), not
// an error.
func (h *AskHandler) Ask(c fiber.Ctx) error {
	var body struct {
		ContextID string `json:"context_id"`
		Question  string `json:"question"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := h.askService.Ask(c.Context(), body.ContextID, body.Question)
	if err != nil {
		switch {
		case errors.Is(err, port.ErrValidation):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, port.ErrContextNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "context not found, re-ingest the page"})
		case errors.Is(err, port.ErrGenerationFailed):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(fiber.Map{
		"answer": result.Answer,
		"usage":  result.Usage,
		"metrics": fiber.Map{
			"timing":    result.Record.Timing,
			"retrieval": result.Record.Retrieval,
		},
	})
}
