package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arturoeanton/go-page-rag-ollama/internal/domain"
	"github.com/arturoeanton/go-page-rag-ollama/internal/guard"
	"github.com/arturoeanton/go-page-rag-ollama/internal/index"
	"github.com/arturoeanton/go-page-rag-ollama/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPage(t *testing.T, ai *mockAIProvider, texts ...string) *store.PageContext {
	t.Helper()
	contextStore := store.NewContextStore(time.Hour, 10)
	ingest := NewIngestService(ai, contextStore, testLimits())

	inputs := make([]guard.FragmentInput, len(texts))
	for i, text := range texts {
		inputs[i] = guard.FragmentInput{Kind: "paragraph", Text: text}
	}
	result, err := ingest.Ingest(context.Background(), "https://example.com", inputs)
	require.NoError(t, err)

	page, err := contextStore.Get(result.ContextID)
	require.NoError(t, err)
	return page
}

func testLimits() guard.Limits {
	return guard.Limits{
		MaxFragments:     50,
		MaxFragmentChars: 10000,
		MaxTotalChars:    100000,
		MaxQuestionChars: 20000,
		MaxURLChars:      2000,
	}
}

func TestRetrieverKeywordPriority(t *testing.T) {
	ai := newMockAI()
	page := buildPage(t, ai,
		"Return Policy",
		"Returns accepted within 30 days.",
	)
	retriever := NewRetriever(ai, 5, 20000)

	chunks, stats, timing := retriever.Retrieve(context.Background(), page, "What is the return policy?")

	require.NotEmpty(t, chunks)
	assert.Equal(t, domain.HitSourceKeyword, chunks[0].Source)
	assert.True(t, stats.UsedKeyword)
	assert.GreaterOrEqual(t, stats.KeywordHits, 1)
	assert.Equal(t, len(chunks), stats.TotalChunks)
	assert.GreaterOrEqual(t, timing.KeywordMs, 0.0)
	assert.GreaterOrEqual(t, timing.SemanticMs, 0.0)
}

func TestRetrieverSemanticFallback(t *testing.T) {
	ai := newMockAI()
	ai.vectors["Items may be sent back within a month of purchase."] = []float32{1, 0, 0}
	ai.vectors["What's your refund window?"] = []float32{0.95, 0.05, 0}
	page := buildPage(t, ai, "Items may be sent back within a month of purchase.")
	retriever := NewRetriever(ai, 5, 20000)

	chunks, stats, _ := retriever.Retrieve(context.Background(), page, "What's your refund window?")

	require.Len(t, chunks, 1)
	assert.Equal(t, domain.HitSourceSemantic, chunks[0].Source)
	assert.False(t, stats.UsedKeyword)
	assert.True(t, stats.UsedSemantic)
	assert.Equal(t, 0, stats.KeywordHits)
}

func TestRetrieverDedupAcrossSources(t *testing.T) {
	ai := newMockAI()
	text := "Returns accepted within 30 days."
	ai.vectors[text] = []float32{1, 0, 0}
	ai.vectors["return deadline"] = []float32{1, 0, 0}
	page := buildPage(t, ai, text)
	retriever := NewRetriever(ai, 5, 20000)

	// The single fragment matches by keyword and by similarity; it must
	// appear exactly once.
	chunks, _, _ := retriever.Retrieve(context.Background(), page, "return deadline")
	require.Len(t, chunks, 1)
	assert.Equal(t, domain.HitSourceKeyword, chunks[0].Source)
}

func TestRetrieverEmbedFailureDegrades(t *testing.T) {
	ai := newMockAI()
	page := buildPage(t, ai, "Returns accepted within 30 days.")
	ai.embedErr = errors.New("provider down")
	retriever := NewRetriever(ai, 5, 20000)

	chunks, stats, _ := retriever.Retrieve(context.Background(), page, "What about returns?")

	require.NotEmpty(t, chunks)
	assert.True(t, stats.UsedKeyword)
	assert.False(t, stats.UsedSemantic)
	assert.Equal(t, 0, stats.SemanticHits)
}

func TestRetrieverKeywordOnlyContext(t *testing.T) {
	ai := newMockAI()
	page := &store.PageContext{
		Context: domain.Context{
			ID:     "kw-only",
			Status: domain.ContextStatusKeywordOnly,
			Fragments: []domain.Fragment{
				{ID: 0, Kind: domain.KindParagraph, Text: "Opening hours: 9 to 5."},
			},
		},
		Keyword: index.NewKeywordIndex([]domain.Fragment{
			{ID: 0, Kind: domain.KindParagraph, Text: "Opening hours: 9 to 5."},
		}),
	}
	retriever := NewRetriever(ai, 5, 20000)

	chunks, stats, _ := retriever.Retrieve(context.Background(), page, "What are the opening hours?")

	require.NotEmpty(t, chunks)
	assert.False(t, stats.UsedSemantic)
	// No semantic index means no query-time embed call either.
	embeds, _ := ai.calls()
	assert.Equal(t, 0, embeds)
}

func TestRetrieverIdempotent(t *testing.T) {
	ai := newMockAI()
	page := buildPage(t, ai,
		"Return Policy",
		"Returns accepted within 30 days.",
		"Shipping takes two days.",
	)
	retriever := NewRetriever(ai, 5, 20000)

	first, _, _ := retriever.Retrieve(context.Background(), page, "return policy and shipping")
	second, _, _ := retriever.Retrieve(context.Background(), page, "return policy and shipping")
	assert.Equal(t, first, second)
}
