// Package metrics keeps the append-only log of per-request metric records and
// derives the process-wide running summary from it.
package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/arturoeanton/go-page-rag-ollama/internal/domain"
	"github.com/arturoeanton/go-page-rag-ollama/internal/port"
)

// Collector aggregates metric records across requests. The summary is always
// recomputed from the full record log, so there is no incremental state that
// can drift. Safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	records []domain.MetricRecord
	sink    port.MetricSink // optional durable mirror, may be nil
}

// NewCollector creates a collector. sink may be nil.
func NewCollector(sink port.MetricSink) *Collector {
	return &Collector{sink: sink}
}

// Record appends one metric record and logs it. Persisting to the sink
// happens off the request path.
func (c *Collector) Record(rec domain.MetricRecord) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	c.mu.Lock()
	c.records = append(c.records, rec)
	sink := c.sink
	c.mu.Unlock()

	slog.Info("retrieval metrics",
		"context_id", rec.ContextID,
		"outcome", rec.Outcome,
		"keyword_ms", rec.Timing.KeywordMs,
		"semantic_ms", rec.Timing.SemanticMs,
		"generation_ms", rec.Timing.GenerationMs,
		"total_ms", rec.Timing.TotalMs,
		"keyword_hits", rec.Retrieval.KeywordHits,
		"semantic_hits", rec.Retrieval.SemanticHits,
		"chunks", rec.Retrieval.TotalChunks,
	)

	if sink != nil {
		go func(rec domain.MetricRecord) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := sink.SaveMetricRecord(ctx, &rec); err != nil {
				slog.Warn("metric sink write failed", "error", err)
			}
		}(rec)
	}
}

// Summary recomputes the running summary from the record log.
func (c *Collector) Summary() domain.MetricsSummary {
	c.mu.Lock()
	records := make([]domain.MetricRecord, len(c.records))
	copy(records, c.records)
	c.mu.Unlock()

	summary := domain.MetricsSummary{TotalRequests: len(records)}
	if len(records) == 0 {
		return summary
	}

	keywordHits := 0
	semanticFallbacks := 0
	totalLatency := 0.0
	for _, r := range records {
		if r.Retrieval.UsedKeyword {
			keywordHits++
		}
		if r.Retrieval.UsedSemantic && !r.Retrieval.UsedKeyword {
			semanticFallbacks++
		}
		totalLatency += r.Timing.TotalMs
	}

	n := float64(len(records))
	summary.KeywordHitRate = float64(keywordHits) / n * 100
	summary.SemanticFallbackRate = float64(semanticFallbacks) / n * 100
	summary.AvgLatencyMs = totalLatency / n
	return summary
}

// Records returns a copy of the full record log.
func (c *Collector) Records() []domain.MetricRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.MetricRecord, len(c.records))
	copy(out, c.records)
	return out
}
