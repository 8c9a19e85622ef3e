package broadcast

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pscheid92/blace/internal/adapter/metrics"
	"github.com/pscheid92/blace/internal/domain"
)

type subscribers map[uuid.UUID]chan<- domain.PixelUpdate

// Registry tracks which delivery queues observe which game.
type Registry struct {
	mu      sync.RWMutex
	games   map[uuid.UUID]subscribers
	metrics *metrics.BroadcastMetrics
}

func NewRegistry(m *metrics.BroadcastMetrics) *Registry {
	return &Registry{
		games:   make(map[uuid.UUID]subscribers),
		metrics: m,
	}
}

// Subscribe registers ch for updates of gameID under connID. Subscribing an
// existing (gameID, connID) pair replaces its queue.
func (r *Registry) Subscribe(gameID, connID uuid.UUID, ch chan<- domain.PixelUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, ok := r.games[gameID]
	if !ok {
		subs = make(subscribers)
		r.games[gameID] = subs
	}
	if _, exists := subs[connID]; !exists {
		r.metrics.SessionOpened()
	}
	subs[connID] = ch
}

// Unsubscribe removes the subscription if present. A game left without
// subscribers is dropped from the registry.
func (r *Registry) Unsubscribe(gameID, connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, ok := r.games[gameID]
	if !ok {
		return
	}
	if _, exists := subs[connID]; !exists {
		return
	}

	delete(subs, connID)
	r.metrics.SessionClosed()
	if len(subs) == 0 {
		delete(r.games, gameID)
	}
}

// Snapshot returns the queues subscribed to gameID at the time of the call.
// The result is owned by the caller and unaffected by later changes.
func (r *Registry) Snapshot(gameID uuid.UUID) []chan<- domain.PixelUpdate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := r.games[gameID]
	if len(subs) == 0 {
		return nil
	}

	out := make([]chan<- domain.PixelUpdate, 0, len(subs))
	for _, ch := range subs {
		out = append(out, ch)
	}
	return out
}

// Count returns the number of subscriptions of gameID.
func (r *Registry) Count(gameID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games[gameID])
}

// Len returns the number of games with at least one subscription.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}
