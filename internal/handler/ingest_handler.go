package handler

import (
	"errors"

	"github.com/arturoeanton/go-page-rag-ollama/internal/guard"
	"github.com/arturoeanton/go-page-rag-ollama/internal/port"
	"github.com/arturoeanton/go-page-rag-ollama/internal/service"
	"github.com/gofiber/fiber/v3"
)

// IngestHandler handles page ingestion from the content extraction client.
type IngestHandler struct {
	ingestService *service.IngestService
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(ingestService *service.IngestService) *IngestHandler {
	return &IngestHandler{ingestService: ingestService}
}

// Register sets up content routes.
func (h *IngestHandler) Register(router fiber.Router) {
	content := router.Group("/content")
	content.Post("/ingest-page", h.IngestPage)
}

// IngestPage creates a new page context from extracted fragments.
func (h *IngestHandler) IngestPage(c fiber.Ctx) error {
	var body struct {
		URL       string                `json:"url"`
		Fragments []guard.FragmentInput `json:"fragments"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := h.ingestService.Ingest(c.Context(), body.URL, body.Fragments)
	if err != nil {
		if errors.Is(err, port.ErrValidation) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		}
		if errors.Is(err, port.ErrIndexingFailed) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}
