package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/arturoeanton/go-page-rag-ollama/internal/domain"
	"github.com/arturoeanton/go-page-rag-ollama/internal/port"
	"github.com/arturoeanton/go-page-rag-ollama/internal/store"
)

// Retriever fuses the keyword and semantic indexes of one context into a
// ranked, deduplicated, budget-bounded chunk list for a question.
type Retriever struct {
	ai          port.AIProvider
	topK        int
	budgetChars int
}

// NewRetriever creates a retriever. topK bounds each index's result list;
// budgetChars bounds the fused context handed to the generator.
func NewRetriever(ai port.AIProvider, topK, budgetChars int) *Retriever {
	return &Retriever{ai: ai, topK: topK, budgetChars: budgetChars}
}

// Retrieve runs both index queries concurrently and merges the results. A
// semantic failure (embedding provider down, keyword-only context) degrades
// to an empty semantic set, never an error. The returned stats and timings
// feed the per-request metric record.
func (r *Retriever) Retrieve(ctx context.Context, page *store.PageContext, question string) ([]domain.RetrievalHit, domain.RetrievalStats, domain.Timing) {
	var (
		semantic   []domain.RetrievalHit
		semanticMs float64
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		start := time.Now()
		semantic = r.semanticSearch(ctx, page, question)
		semanticMs = durationMs(start)
	}()

	start := time.Now()
	keyword := page.Keyword.Query(question, r.topK)
	keywordMs := durationMs(start)

	<-done

	chunks := fuseHits(keyword, semantic, r.budgetChars)

	stats := domain.RetrievalStats{
		KeywordHits:  len(keyword),
		SemanticHits: len(semantic),
		TotalChunks:  len(chunks),
	}
	for _, c := range chunks {
		switch c.Source {
		case domain.HitSourceKeyword:
			stats.UsedKeyword = true
		case domain.HitSourceSemantic:
			stats.UsedSemantic = true
		}
	}

	timing := domain.Timing{KeywordMs: keywordMs, SemanticMs: semanticMs}
	return chunks, stats, timing
}

// semanticSearch embeds the question and queries the vector index. Returns
// nil when the context has no semantic index or the provider call fails.
func (r *Retriever) semanticSearch(ctx context.Context, page *store.PageContext, question string) []domain.RetrievalHit {
	if page.Semantic == nil {
		return nil
	}
	queryVector, err := r.ai.Embed(ctx, question)
	if err != nil {
		slog.Warn("query embedding failed, semantic search degraded",
			"context_id", page.Context.ID, "error", err)
		return nil
	}
	return page.Semantic.Query(queryVector, r.topK)
}

// durationMs returns the elapsed wall-clock time since start in milliseconds.
func durationMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
