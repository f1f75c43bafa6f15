package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/arturoeanton/go-page-rag-ollama/internal/domain"
	"github.com/arturoeanton/go-page-rag-ollama/internal/guard"
	"github.com/arturoeanton/go-page-rag-ollama/internal/port"
	"github.com/arturoeanton/go-page-rag-ollama/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestHappyPath(t *testing.T) {
	ai := newMockAI()
	contextStore := store.NewContextStore(time.Minute, 10)
	svc := NewIngestService(ai, contextStore, testLimits())

	result, err := svc.Ingest(context.Background(), "https://shop.example/returns", []guard.FragmentInput{
		{Kind: "title", Text: "Return Policy"},
		{Kind: "paragraph", Text: "Returns accepted within 30 days."},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.ContextID)
	assert.Equal(t, domain.ContextStatusIndexed, result.Status)
	assert.Equal(t, 2, result.FragmentCount)

	page, err := contextStore.Get(result.ContextID)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/returns", page.Context.URL)
	assert.NotNil(t, page.Semantic)
	require.Len(t, page.Context.Fragments, 2)
	assert.Equal(t, domain.KindTitle, page.Context.Fragments[0].Kind)
	assert.Equal(t, 0, page.Context.Fragments[0].ID)
	assert.Equal(t, 1, page.Context.Fragments[1].ID)
}

func TestIngestValidationRejected(t *testing.T) {
	ai := newMockAI()
	contextStore := store.NewContextStore(time.Minute, 10)
	svc := NewIngestService(ai, contextStore, testLimits())

	tests := []struct {
		name      string
		url       string
		fragments []guard.FragmentInput
	}{
		{"missing url", "", []guard.FragmentInput{{Text: "a"}}},
		{"no fragments", "https://example.com", nil},
		{
			"too many fragments",
			"https://example.com",
			make([]guard.FragmentInput, testLimits().MaxFragments+1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := range tt.fragments {
				tt.fragments[i].Text = "x"
			}
			_, err := svc.Ingest(context.Background(), tt.url, tt.fragments)
			require.Error(t, err)
			assert.ErrorIs(t, err, port.ErrValidation)
		})
	}

	embeds, _ := ai.calls()
	assert.Equal(t, 0, embeds)
	assert.Equal(t, 0, contextStore.Len())
}

func TestIngestTruncatesOverlongFragment(t *testing.T) {
	ai := newMockAI()
	contextStore := store.NewContextStore(time.Minute, 10)
	limits := testLimits()
	svc := NewIngestService(ai, contextStore, limits)

	long := strings.Repeat("a", limits.MaxFragmentChars+500)
	result, err := svc.Ingest(context.Background(), "https://example.com", []guard.FragmentInput{
		{Kind: "paragraph", Text: long},
	})
	require.NoError(t, err)

	page, err := contextStore.Get(result.ContextID)
	require.NoError(t, err)
	assert.Len(t, page.Context.Fragments[0].Text, limits.MaxFragmentChars)
}

func TestIngestKeywordOnlyOnEmbedFailure(t *testing.T) {
	ai := newMockAI()
	ai.embedErr = errors.New("embedding model not loaded")
	contextStore := store.NewContextStore(time.Minute, 10)
	svc := NewIngestService(ai, contextStore, testLimits())

	result, err := svc.Ingest(context.Background(), "https://example.com", []guard.FragmentInput{
		{Kind: "paragraph", Text: "Returns accepted within 30 days."},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ContextStatusKeywordOnly, result.Status)

	// The context is still queryable through the keyword index.
	page, err := contextStore.Get(result.ContextID)
	require.NoError(t, err)
	assert.Nil(t, page.Semantic)
	assert.NotEmpty(t, page.Keyword.Query("return policy", 5))
}

func TestIngestFailsWhenNoIndexCanBeBuilt(t *testing.T) {
	ai := newMockAI()
	ai.embedErr = errors.New("embedding model not loaded")
	contextStore := store.NewContextStore(time.Minute, 10)
	svc := NewIngestService(ai, contextStore, testLimits())

	// Stopwords and punctuation only: the keyword index ends up with no
	// terms, and with embeddings down there is nothing left to search.
	_, err := svc.Ingest(context.Background(), "https://example.com", []guard.FragmentInput{
		{Kind: "paragraph", Text: "to be or not to be"},
		{Kind: "paragraph", Text: "!!! ???"},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, port.ErrIndexingFailed)
	assert.Equal(t, 0, contextStore.Len())
}

func TestIngestEmbedsInBatches(t *testing.T) {
	ai := newMockAI()
	contextStore := store.NewContextStore(time.Minute, 10)
	limits := testLimits()
	limits.MaxFragments = 300
	svc := NewIngestService(ai, contextStore, limits)

	inputs := make([]guard.FragmentInput, 250)
	for i := range inputs {
		inputs[i] = guard.FragmentInput{Kind: "paragraph", Text: strings.Repeat("word ", 5)}
	}
	result, err := svc.Ingest(context.Background(), "https://example.com", inputs)
	require.NoError(t, err)

	assert.Equal(t, domain.ContextStatusIndexed, result.Status)
	assert.Equal(t, 250, result.FragmentCount)
	embeds, _ := ai.calls()
	assert.Equal(t, 250, embeds)
}

func TestIngestDefaultsFragmentKind(t *testing.T) {
	ai := newMockAI()
	contextStore := store.NewContextStore(time.Minute, 10)
	svc := NewIngestService(ai, contextStore, testLimits())

	result, err := svc.Ingest(context.Background(), "https://example.com", []guard.FragmentInput{
		{Text: "no kind supplied"},
	})
	require.NoError(t, err)

	page, err := contextStore.Get(result.ContextID)
	require.NoError(t, err)
	assert.Equal(t, domain.KindBody, page.Context.Fragments[0].Kind)
}
