package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/arturoeanton/go-page-rag-ollama/internal/adapter/ai"
	pgstore "github.com/arturoeanton/go-page-rag-ollama/internal/adapter/store"
	"github.com/arturoeanton/go-page-rag-ollama/internal/guard"
	"github.com/arturoeanton/go-page-rag-ollama/internal/handler"
	"github.com/arturoeanton/go-page-rag-ollama/internal/metrics"
	"github.com/arturoeanton/go-page-rag-ollama/internal/middleware"
	"github.com/arturoeanton/go-page-rag-ollama/internal/port"
	"github.com/arturoeanton/go-page-rag-ollama/internal/service"
	"github.com/arturoeanton/go-page-rag-ollama/internal/store"
	"github.com/arturoeanton/go-page-rag-ollama/pkg/config"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting PageSage AI",
		"port", cfg.Port,
		"ollama_embed", cfg.OllamaEmbedURL,
		"ollama_chat", cfg.OllamaChatURL,
		"context_ttl", cfg.ContextTTL,
		"max_contexts", cfg.MaxContexts,
	)

	// ── Optional durable sink (audit + metric records) ──────────────────
	var (
		auditWriter port.AuditWriter = middleware.SlogAuditWriter{}
		metricSink  port.MetricSink
	)
	if cfg.DatabaseURL != "" {
		pg, err := pgstore.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		auditWriter = pg
		metricSink = pg
	}

	// ── Adapters ─────────────────────────────────────────────────────────
	ollamaAI := ai.NewOllamaProvider(
		ai.OllamaEndpointConfig{
			BaseURL: cfg.OllamaEmbedURL,
			Model:   cfg.OllamaEmbedModel,
			Token:   cfg.OllamaEmbedToken,
		},
		ai.OllamaEndpointConfig{
			BaseURL: cfg.OllamaChatURL,
			Model:   cfg.OllamaChatModel,
			Token:   cfg.OllamaChatToken,
		},
	)

	// ── Core state ───────────────────────────────────────────────────────
	contextStore := store.NewContextStore(cfg.ContextTTL, cfg.MaxContexts)
	collector := metrics.NewCollector(metricSink)

	limits := guard.Limits{
		MaxFragments:     cfg.MaxFragments,
		MaxFragmentChars: cfg.MaxFragmentChars,
		MaxTotalChars:    cfg.MaxTotalChars,
		MaxQuestionChars: cfg.MaxQuestionChars,
		MaxURLChars:      cfg.MaxURLChars,
	}
	limiter := guard.NewRateLimiter(cfg.RatePerHour, cfg.RateBurst)

	// ── Services ─────────────────────────────────────────────────────────
	ingestService := service.NewIngestService(ollamaAI, contextStore, limits)
	retriever := service.NewRetriever(ollamaAI, cfg.TopK, cfg.ContextBudgetChars)
	answerer := service.NewAnswerer(ollamaAI, cfg.GenerateTimeout)
	askService := service.NewAskService(contextStore, retriever, answerer, collector, limits)

	// ── Context janitor ──────────────────────────────────────────────────
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			contextStore.Sweep()
		}
	}()

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(auditWriter))

	// Health check
	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"app":      cfg.AppName,
			"version":  "1.0.0",
			"contexts": contextStore.Len(),
		})
	})

	// ── API Routes (rate limited) ────────────────────────────────────────
	api := app.Group("/api/v1", middleware.RateLimitMiddleware(limiter))

	ingestHandler := handler.NewIngestHandler(ingestService)
	ingestHandler.Register(api)

	askHandler := handler.NewAskHandler(askService)
	askHandler.Register(api)

	metricsHandler := handler.NewMetricsHandler(collector)
	metricsHandler.Register(api)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
