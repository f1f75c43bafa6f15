package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/arturoeanton/go-page-rag-ollama/internal/domain"
	"github.com/arturoeanton/go-page-rag-ollama/internal/index"
	"github.com/arturoeanton/go-page-rag-ollama/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPage(id string) *PageContext {
	frags := []domain.Fragment{{ID: 0, Kind: domain.KindParagraph, Text: "fragment of " + id}}
	return &PageContext{
		Context: domain.Context{
			ID:        id,
			URL:       "https://example.com/" + id,
			Status:    domain.ContextStatusIndexed,
			Fragments: frags,
			CreatedAt: time.Now(),
		},
		Keyword: index.NewKeywordIndex(frags),
	}
}

func TestStorePutGet(t *testing.T) {
	s := NewContextStore(time.Minute, 10)
	s.Put(newPage("ctx-1"))

	page, err := s.Get("ctx-1")
	require.NoError(t, err)
	assert.Equal(t, "ctx-1", page.Context.ID)
	assert.Equal(t, 1, s.Len())

	_, err = s.Get("ctx-unknown")
	assert.ErrorIs(t, err, port.ErrContextNotFound)
}

func TestStoreIdleExpiry(t *testing.T) {
	s := NewContextStore(20*time.Millisecond, 10)
	s.Put(newPage("ctx-1"))

	time.Sleep(30 * time.Millisecond)
	_, err := s.Get("ctx-1")
	assert.ErrorIs(t, err, port.ErrContextNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestStoreGetRefreshesIdleTimer(t *testing.T) {
	s := NewContextStore(50*time.Millisecond, 10)
	s.Put(newPage("ctx-1"))

	// Keep querying inside the TTL; the context must survive well past one
	// TTL of wall-clock time.
	for i := 0; i < 4; i++ {
		time.Sleep(25 * time.Millisecond)
		_, err := s.Get("ctx-1")
		require.NoError(t, err)
	}
}

func TestStoreEvictsLeastRecentlyQueriedAtCapacity(t *testing.T) {
	s := NewContextStore(time.Minute, 2)
	s.Put(newPage("ctx-1"))
	time.Sleep(2 * time.Millisecond)
	s.Put(newPage("ctx-2"))
	time.Sleep(2 * time.Millisecond)

	// Touch ctx-1 so ctx-2 becomes the eviction candidate.
	_, err := s.Get("ctx-1")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	s.Put(newPage("ctx-3"))
	assert.Equal(t, 2, s.Len())

	_, err = s.Get("ctx-1")
	assert.NoError(t, err)
	_, err = s.Get("ctx-2")
	assert.ErrorIs(t, err, port.ErrContextNotFound)
	_, err = s.Get("ctx-3")
	assert.NoError(t, err)
}

func TestStoreSnapshotSurvivesEviction(t *testing.T) {
	s := NewContextStore(time.Minute, 10)
	s.Put(newPage("ctx-1"))

	page, err := s.Get("ctx-1")
	require.NoError(t, err)
	s.Evict("ctx-1")

	// The held reference keeps working after eviction.
	hits := page.Keyword.Query("fragment", 5)
	assert.NotEmpty(t, hits)
	_, err = s.Get("ctx-1")
	assert.ErrorIs(t, err, port.ErrContextNotFound)
}

func TestStoreSweep(t *testing.T) {
	s := NewContextStore(10*time.Millisecond, 100)
	for i := 0; i < 5; i++ {
		s.Put(newPage(fmt.Sprintf("ctx-%d", i)))
	}
	require.Equal(t, 5, s.Len())

	time.Sleep(20 * time.Millisecond)
	dropped := s.Sweep()
	assert.Equal(t, 5, dropped)
	assert.Equal(t, 0, s.Len())
}

func TestStoreContextsAreIsolated(t *testing.T) {
	s := NewContextStore(time.Minute, 10)

	fragsA := []domain.Fragment{{ID: 0, Kind: domain.KindParagraph, Text: "Returns accepted within 30 days."}}
	fragsB := []domain.Fragment{{ID: 0, Kind: domain.KindParagraph, Text: "Shipping takes two days."}}
	s.Put(&PageContext{
		Context: domain.Context{ID: "ctx-a", Fragments: fragsA},
		Keyword: index.NewKeywordIndex(fragsA),
	})
	s.Put(&PageContext{
		Context: domain.Context{ID: "ctx-b", Fragments: fragsB},
		Keyword: index.NewKeywordIndex(fragsB),
	})

	pageA, err := s.Get("ctx-a")
	require.NoError(t, err)
	pageB, err := s.Get("ctx-b")
	require.NoError(t, err)

	// Each context only sees its own fragments.
	assert.Empty(t, pageA.Keyword.Query("shipping", 5))
	assert.NotEmpty(t, pageB.Keyword.Query("shipping", 5))
}
