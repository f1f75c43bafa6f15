package service

import (
	"context"
	"time"

	"github.com/arturoeanton/go-page-rag-ollama/internal/domain"
	"github.com/arturoeanton/go-page-rag-ollama/internal/guard"
	"github.com/arturoeanton/go-page-rag-ollama/internal/metrics"
	"github.com/arturoeanton/go-page-rag-ollama/internal/store"
)

// AskService answers a question against one ingested page: validate, retrieve,
// generate, record. Every request that reaches the pipeline produces exactly
// one metric record, whatever its outcome.
type AskService struct {
	store     *store.ContextStore
	retriever *Retriever
	answerer  *Answerer
	collector *metrics.Collector
	limits    guard.Limits
}

// NewAskService creates a new ask service.
func NewAskService(
	contextStore *store.ContextStore,
	retriever *Retriever,
	answerer *Answerer,
	collector *metrics.Collector,
	limits guard.Limits,
) *AskService {
	return &AskService{
		store:     contextStore,
		retriever: retriever,
		answerer:  answerer,
		collector: collector,
		limits:    limits,
	}
}

// Ask runs the full pipeline for one question. Retrieval holds a snapshot of
// the context's indexes, so concurrent eviction cannot corrupt the request.
func (s *AskService) Ask(ctx context.Context, contextID, question string) (*domain.AskResult, error) {
	question, err := s.limits.ValidateQuestion(question)
	if err != nil {
		return nil, err
	}

	page, err := s.store.Get(contextID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	chunks, stats, timing := s.retriever.Retrieve(ctx, page, question)

	rec := domain.MetricRecord{
		ContextID: contextID,
		Timing:    timing,
		Retrieval: stats,
	}

	if len(chunks) == 0 {
		rec.Outcome = domain.OutcomeNoContext
		rec.Timing.TotalMs = durationMs(start)
		s.collector.Record(rec)
		return &domain.AskResult{Answer: DontKnowAnswer, Record: rec}, nil
	}

	genStart := time.Now()
	gen, err := s.answerer.Answer(ctx, chunks, question)
	rec.Timing.GenerationMs = durationMs(genStart)
	rec.Timing.TotalMs = durationMs(start)
	if err != nil {
		rec.Outcome = domain.OutcomeGenerationFailed
		s.collector.Record(rec)
		return nil, err
	}

	rec.Outcome = domain.OutcomeAnswered
	s.collector.Record(rec)

	return &domain.AskResult{
		Answer: gen.Text,
		Usage:  gen.Usage,
		Record: rec,
	}, nil
}
