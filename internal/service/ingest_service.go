package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arturoeanton/go-page-rag-ollama/internal/domain"
	"github.com/arturoeanton/go-page-rag-ollama/internal/guard"
	"github.com/arturoeanton/go-page-rag-ollama/internal/index"
	"github.com/arturoeanton/go-page-rag-ollama/internal/port"
	"github.com/arturoeanton/go-page-rag-ollama/internal/store"
	"github.com/google/uuid"
)

// embedBatchSize caps how many fragments are embedded per provider call.
const embedBatchSize = 100

// IngestService turns one page visit into a fully indexed context.
type IngestService struct {
	ai     port.AIProvider
	store  *store.ContextStore
	limits guard.Limits
}

// NewIngestService creates a new ingest service.
func NewIngestService(ai port.AIProvider, contextStore *store.ContextStore, limits guard.Limits) *IngestService {
	return &IngestService{ai: ai, store: contextStore, limits: limits}
}

// IngestResult is returned to the extraction client after indexing.
type IngestResult struct {
	ContextID     string `json:"context_id"`
	Status        string `json:"status"`
	FragmentCount int    `json:"fragment_count"`
}

// Ingest validates the payload, builds the keyword index, embeds every
// fragment, and registers the context. The keyword index never depends on the
// embedding provider: if embeddings fail the context is stored keyword-only
// and remains usable.
func (s *IngestService) Ingest(ctx context.Context, url string, inputs []guard.FragmentInput) (*IngestResult, error) {
	inputs, err := s.limits.ValidatePage(url, inputs)
	if err != nil {
		return nil, err
	}

	fragments := make([]domain.Fragment, len(inputs))
	texts := make([]string, len(inputs))
	for i, in := range inputs {
		fragments[i] = domain.Fragment{
			ID:     i,
			Kind:   domain.FragmentKind(in.Kind),
			Text:   in.Text,
			Tokens: domain.EstimateTokens(in.Text),
		}
		texts[i] = in.Text
	}

	page := &store.PageContext{
		Context: domain.Context{
			ID:        uuid.NewString(),
			URL:       url,
			Status:    domain.ContextStatusIndexed,
			Fragments: fragments,
			CreatedAt: time.Now(),
		},
		Keyword: index.NewKeywordIndex(fragments),
	}

	vectors, err := s.embedAll(ctx, texts)
	if err != nil {
		// Degrading to keyword-only requires a keyword index worth keeping.
		if page.Keyword.Empty() {
			return nil, fmt.Errorf("%w: no searchable terms and embeddings unavailable: %v",
				port.ErrIndexingFailed, err)
		}
		slog.Warn("embedding provider unavailable, storing keyword-only context",
			"context_id", page.Context.ID, "error", err)
		page.Context.Status = domain.ContextStatusKeywordOnly
	} else {
		page.Semantic = index.NewSemanticIndex(fragments, vectors)
	}

	s.store.Put(page)
	slog.Info("page ingested",
		"context_id", page.Context.ID,
		"url", url,
		"fragments", len(fragments),
		"status", page.Context.Status,
	)

	return &IngestResult{
		ContextID:     page.Context.ID,
		Status:        page.Context.Status,
		FragmentCount: len(fragments),
	}, nil
}

// embedAll requests embeddings in batches and stitches the results back
// together in fragment order.
func (s *IngestService) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := s.ai.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embed batch [%d:%d]: got %d vectors", start, end, len(batch))
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}
