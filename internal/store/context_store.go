// Package store owns the process-wide page-context state: every live context,
// its fragments and its two indexes. Contexts are created once, fully built,
// then become read-only; the store's lock only guards the map itself.
package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/arturoeanton/go-page-rag-ollama/internal/domain"
	"github.com/arturoeanton/go-page-rag-ollama/internal/index"
	"github.com/arturoeanton/go-page-rag-ollama/internal/port"
)

// PageContext bundles a context with its indexes. It is immutable after
// creation: queries that hold a reference keep working even if the store
// evicts the id concurrently (snapshot semantics).
type PageContext struct {
	Context  domain.Context
	Keyword  *index.KeywordIndex
	Semantic *index.SemanticIndex // nil for keyword-only contexts
}

type entry struct {
	page      *PageContext
	lastQuery time.Time
}

// ContextStore holds all live contexts. Expiry is measured from the last
// query (idle TTL); once capacity is exceeded the least-recently-queried
// context is evicted first.
type ContextStore struct {
	mu       sync.RWMutex
	contexts map[string]*entry
	ttl      time.Duration
	capacity int
}

// NewContextStore creates a store with the given idle TTL and context
// capacity.
func NewContextStore(ttl time.Duration, capacity int) *ContextStore {
	return &ContextStore{
		contexts: make(map[string]*entry),
		ttl:      ttl,
		capacity: capacity,
	}
}

// Put registers a fully built context. If the store is at capacity, expired
// contexts are dropped first, then the least-recently-queried one.
func (s *ContextStore) Put(page *PageContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.dropExpiredLocked(now)
	for s.capacity > 0 && len(s.contexts) >= s.capacity && len(s.contexts) > 0 {
		s.evictOldestLocked()
	}
	s.contexts[page.Context.ID] = &entry{page: page, lastQuery: now}
}

// Get returns the context for id and refreshes its idle timer. Expired or
// unknown ids return ErrContextNotFound.
func (s *ContextStore) Get(id string) (*PageContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.contexts[id]
	if !ok {
		return nil, port.ErrContextNotFound
	}
	if time.Since(e.lastQuery) > s.ttl {
		delete(s.contexts, id)
		slog.Info("context expired", "context_id", id)
		return nil, port.ErrContextNotFound
	}
	e.lastQuery = time.Now()
	return e.page, nil
}

// Evict removes a context and releases its indexes.
func (s *ContextStore) Evict(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, id)
}

// Len returns the number of live contexts, including any not yet swept.
func (s *ContextStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contexts)
}

// Sweep drops every expired context. Called periodically by the janitor in
// main so idle contexts release memory without waiting for a Get.
func (s *ContextStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropExpiredLocked(time.Now())
}

func (s *ContextStore) dropExpiredLocked(now time.Time) int {
	dropped := 0
	for id, e := range s.contexts {
		if now.Sub(e.lastQuery) > s.ttl {
			delete(s.contexts, id)
			dropped++
		}
	}
	if dropped > 0 {
		slog.Info("swept expired contexts", "dropped", dropped, "remaining", len(s.contexts))
	}
	return dropped
}

func (s *ContextStore) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range s.contexts {
		if oldestID == "" || e.lastQuery.Before(oldest) {
			oldestID = id
			oldest = e.lastQuery
		}
	}
	if oldestID != "" {
		delete(s.contexts, oldestID)
		slog.Info("evicted context at capacity", "context_id", oldestID)
	}
}
