package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment
// variables. It is built once at startup and never mutated afterwards.
type Config struct {
	// Server
	Port    string
	AppName string

	// Database (optional; empty disables the durable audit/metrics sink)
	DatabaseURL string

	// Ollama — Embed endpoint
	OllamaEmbedURL   string
	OllamaEmbedModel string
	OllamaEmbedToken string // Bearer token for Ollama Cloud (empty = local)

	// Ollama — Chat endpoint
	OllamaChatURL   string
	OllamaChatModel string
	OllamaChatToken string // Bearer token for Ollama Cloud (empty = local)

	// Guardrails
	MaxFragments     int
	MaxFragmentChars int
	MaxTotalChars    int
	MaxQuestionChars int
	MaxURLChars      int
	RatePerHour      int
	RateBurst        int

	// Retrieval
	TopK               int
	ContextBudgetChars int

	// Context lifecycle
	ContextTTL  time.Duration
	MaxContexts int

	// Generation
	GenerateTimeout time.Duration

	// Frontend (CORS origin of the extraction client)
	FrontendURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envOrDefault("PORT", "3001"),
		AppName: envOrDefault("APP_NAME", "PageSage AI"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		OllamaEmbedURL:   envOrDefault("OLLAMA_EMBED_URL", envOrDefault("OLLAMA_BASE_URL", "http://localhost:11434")),
		OllamaEmbedModel: envOrDefault("OLLAMA_EMBED_MODEL", "bge-m3"),
		OllamaEmbedToken: os.Getenv("OLLAMA_EMBED_TOKEN"),

		OllamaChatURL:   envOrDefault("OLLAMA_CHAT_URL", envOrDefault("OLLAMA_BASE_URL", "http://localhost:11434")),
		OllamaChatModel: envOrDefault("OLLAMA_CHAT_MODEL", "qwen3"),
		OllamaChatToken: os.Getenv("OLLAMA_CHAT_TOKEN"),

		MaxFragments:     envOrDefaultInt("MAX_FRAGMENTS", 50),
		MaxFragmentChars: envOrDefaultInt("MAX_FRAGMENT_CHARS", 10000),
		MaxTotalChars:    envOrDefaultInt("MAX_TOTAL_CHARS", 100000),
		MaxQuestionChars: envOrDefaultInt("MAX_QUESTION_CHARS", 20000),
		MaxURLChars:      envOrDefaultInt("MAX_URL_CHARS", 2000),
		RatePerHour:      envOrDefaultInt("RATE_PER_HOUR", 100),
		RateBurst:        envOrDefaultInt("RATE_BURST", 10),

		TopK:               envOrDefaultInt("RETRIEVAL_TOP_K", 5),
		ContextBudgetChars: envOrDefaultInt("CONTEXT_BUDGET_CHARS", 20000),

		ContextTTL:  time.Duration(envOrDefaultInt("CONTEXT_TTL_MINUTES", 30)) * time.Minute,
		MaxContexts: envOrDefaultInt("MAX_CONTEXTS", 200),

		GenerateTimeout: time.Duration(envOrDefaultInt("GENERATE_TIMEOUT_SECONDS", 30)) * time.Second,

		FrontendURL: envOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}
