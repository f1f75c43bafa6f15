package guard

import (
	"fmt"
	"sync"
	"time"

	"github.com/arturoeanton/go-page-rag-ollama/internal/port"
	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the limiter map; once exceeded, clients idle the
// longest are pruned.
const maxTrackedClients = 4096

type clientLimiter struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-client request budget using a token bucket.
// Clients are keyed by network origin. Counters are the only guard state
// mutated concurrently by unrelated requests, so access is serialized.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
}

// NewRateLimiter creates a limiter refilling perHour requests per hour with
// the given burst.
func NewRateLimiter(perHour int, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(float64(perHour) / 3600.0),
		burst:   burst,
	}
}

// Check returns ErrRateLimited once the client's budget is exhausted.
func (r *RateLimiter) Check(clientID string) error {
	if !r.Allow(clientID) {
		return fmt.Errorf("%w, retry later", port.ErrRateLimited)
	}
	return nil
}

// Allow reports whether the client may make another request now.
func (r *RateLimiter) Allow(clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[clientID]
	if !ok {
		if len(r.clients) >= maxTrackedClients {
			r.pruneLocked()
		}
		c = &clientLimiter{bucket: rate.NewLimiter(r.limit, r.burst)}
		r.clients[clientID] = c
	}
	c.lastSeen = time.Now()
	return c.bucket.Allow()
}

// pruneLocked drops clients idle over an hour, then arbitrary entries until
// the map is at half capacity.
func (r *RateLimiter) pruneLocked() {
	cutoff := time.Now().Add(-1 * time.Hour)
	for id, c := range r.clients {
		if c.lastSeen.Before(cutoff) {
			delete(r.clients, id)
		}
	}
	for id := range r.clients {
		if len(r.clients) < maxTrackedClients/2 {
			break
		}
		delete(r.clients, id)
	}
}
