package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/arturoeanton/go-page-rag-ollama/internal/domain"
	"github.com/arturoeanton/go-page-rag-ollama/internal/port"
)

// DontKnowAnswer is returned whenever the context cannot support an answer.
const DontKnowAnswer = "I don't know based on the provided context."

// systemPrompt confines the model to the supplied context. The JSON output
// shape keeps extraction deterministic.
const systemPrompt = `You are a CONTEXT-BOUND reasoning assistant.

You may ONLY use the information present in the CONTEXT.
You ARE allowed to logically reason over that context to answer the question.
You are NOT allowed to use outside knowledge.

Rules:
- If the answer can be reasonably determined from the context, return the most specific answer supported by it.
- If the answer cannot be determined, return exactly:
I don't know based on the provided context.

Output format:
Return a single valid JSON object with this exact shape:
{"response": "<your answer>"}

No markdown. No explanations. No extra keys.`

// Answerer invokes the language-model provider with a strict context-only
// prompt. Each call is stateless with respect to other contexts.
type Answerer struct {
	ai      port.AIProvider
	timeout time.Duration
}

// retryBackoff is the pause before the single retry after a provider error.
const retryBackoff = 500 * time.Millisecond

// NewAnswerer creates an answerer with a hard per-call timeout.
func NewAnswerer(ai port.AIProvider, timeout time.Duration) *Answerer {
	return &Answerer{ai: ai, timeout: timeout}
}

// Answer generates a grounded answer from the fused chunks. With no chunks it
// returns the don't-know answer without calling the provider. Provider errors
// are retried at most once, then surface as ErrGenerationFailed.
func (a *Answerer) Answer(ctx context.Context, chunks []domain.RetrievalHit, question string) (*domain.Generation, error) {
	if len(chunks) == 0 {
		return &domain.Generation{Text: DontKnowAnswer}, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	userPrompt := fmt.Sprintf("CONTEXT:\n%s\n\nQUESTION:\n%s", strings.Join(texts, "\n\n"), question)

	gen, err := a.generateOnce(ctx, userPrompt)
	if err != nil {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", port.ErrGenerationFailed, err)
		case <-time.After(retryBackoff):
		}
		gen, err = a.generateOnce(ctx, userPrompt)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", port.ErrGenerationFailed, err)
		}
	}

	gen.Text = parseAnswer(gen.Text)
	return gen, nil
}

func (a *Answerer) generateOnce(ctx context.Context, userPrompt string) (*domain.Generation, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.ai.Generate(callCtx, systemPrompt, userPrompt)
}

// parseAnswer extracts the answer from the model's JSON object, falling back
// to the raw text when the model emitted something else.
func parseAnswer(raw string) string {
	var payload struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err == nil && payload.Response != "" {
		return payload.Response
	}
	return strings.TrimSpace(raw)
}
