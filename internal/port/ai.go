package port

import (
	"context"

	"github.com/arturoeanton/go-page-rag-ollama/internal/domain"
)

// AIProvider abstracts the embedding and language-model backends. Both are
// treated as untrusted, latent, fallible network services; callers decide how
// to degrade when a call fails. Implementations can target Ollama, OpenAI, or
// any compatible API.
type AIProvider interface {
	// ModelName returns the identifier of the chat model being used.
	ModelName() string

	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Generate sends a system + user prompt and returns the model's answer
	// together with token-usage accounting.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (*domain.Generation, error)
}
