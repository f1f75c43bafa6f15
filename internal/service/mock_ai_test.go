package service

import (
	"context"
	"sync"

	"github.com/arturoeanton/go-page-rag-ollama/internal/domain"
)

// mockAIProvider implements port.AIProvider with canned vectors and answers.
type mockAIProvider struct {
	mu sync.Mutex

	vectors       map[string][]float32 // per-text embedding, fallback defaultVector
	defaultVector []float32
	embedErr      error

	generateFn     func(systemPrompt, userPrompt string) (*domain.Generation, error)
	embedCalls     int
	generateCalls  int
	lastUserPrompt string
}

func newMockAI() *mockAIProvider {
	return &mockAIProvider{
		vectors:       map[string][]float32{},
		defaultVector: []float32{0, 0, 1},
		generateFn: func(_, _ string) (*domain.Generation, error) {
			return &domain.Generation{
				Text:  `{"response": "mock answer"}`,
				Usage: domain.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
			}, nil
		},
	}
}

func (m *mockAIProvider) ModelName() string { return "mock" }

func (m *mockAIProvider) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return m.defaultVector, nil
}

func (m *mockAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockAIProvider) Generate(_ context.Context, systemPrompt, userPrompt string) (*domain.Generation, error) {
	m.mu.Lock()
	m.generateCalls++
	m.lastUserPrompt = userPrompt
	fn := m.generateFn
	m.mu.Unlock()
	return fn(systemPrompt, userPrompt)
}

func (m *mockAIProvider) calls() (embed, generate int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.embedCalls, m.generateCalls
}
