package handler

import (
	"github.com/arturoeanton/go-page-rag-ollama/internal/metrics"
	"github.com/gofiber/fiber/v3"
)

// MetricsHandler exposes the read-only running summary.
type MetricsHandler struct {
	collector *metrics.Collector
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(collector *metrics.Collector) *MetricsHandler {
	return &MetricsHandler{collector: collector}
}

// Register sets up metrics routes.
func (h *MetricsHandler) Register(router fiber.Router) {
	ai := router.Group("/ai")
	ai.Get("/metrics", h.Summary)
}

// Summary returns aggregate retrieval statistics across all requests.
func (h *MetricsHandler) Summary(c fiber.Ctx) error {
	return c.JSON(h.collector.Summary())
}
