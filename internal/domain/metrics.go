package domain

import "time"

// Ask-request outcomes recorded per metric record.
const (
	OutcomeAnswered         = "answered"
	OutcomeNoContext        = "no_context" // retrieval produced nothing; not a failure
	OutcomeGenerationFailed = "generation_failed"
)

// Timing is the wall-clock breakdown of one ask-request, in milliseconds.
type Timing struct {
	KeywordMs    float64 `json:"keyword_ms"`
	SemanticMs   float64 `json:"semantic_ms"`
	GenerationMs float64 `json:"generation_ms"`
	TotalMs      float64 `json:"total_ms"`
}

// RetrievalStats describes how the two indexes contributed to one request.
type RetrievalStats struct {
	KeywordHits  int  `json:"keyword_hits"`
	SemanticHits int  `json:"semantic_hits"`
	TotalChunks  int  `json:"total_chunks"`
	UsedKeyword  bool `json:"used_keyword"`
	UsedSemantic bool `json:"used_semantic"`
}

// MetricRecord is recorded once per ask-request regardless of outcome. Records
// reference their context by id only and outlive it.
type MetricRecord struct {
	ContextID string         `json:"context_id"`
	Timing    Timing         `json:"timing"`
	Retrieval RetrievalStats `json:"retrieval"`
	Outcome   string         `json:"outcome"`
	CreatedAt time.Time      `json:"created_at"`
}

// MetricsSummary is the process-wide running summary, recomputed from the full
// record log on demand.
type MetricsSummary struct {
	TotalRequests        int     `json:"total_requests"`
	KeywordHitRate       float64 `json:"keyword_hit_rate"`       // percent
	SemanticFallbackRate float64 `json:"semantic_fallback_rate"` // percent
	AvgLatencyMs         float64 `json:"avg_latency_ms"`
}
