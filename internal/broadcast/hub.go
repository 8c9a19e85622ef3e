package broadcast

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/blace/internal/adapter/metrics"
	"github.com/pscheid92/blace/internal/domain"
)

const (
	DefaultHubQueueSize = 256
	stopTimeout         = 10 * time.Second
)

// Hub dispatches pixel updates to the subscribers of their game. Publishing
// never blocks the writer; updates that cannot be queued are dropped.
type Hub struct {
	registry *Registry
	events   chan domain.PixelUpdate
	clock    clockwork.Clock
	metrics  *metrics.BroadcastMetrics

	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

var _ domain.Publisher = (*Hub)(nil)

// NewHub starts a dispatcher reading from a queue of queueSize updates.
func NewHub(registry *Registry, queueSize int, clock clockwork.Clock, m *metrics.BroadcastMetrics) *Hub {
	h := newHub(registry, queueSize, clock, m)
	go h.run()
	return h
}

func newHub(registry *Registry, queueSize int, clock clockwork.Clock, m *metrics.BroadcastMetrics) *Hub {
	if queueSize <= 0 {
		queueSize = DefaultHubQueueSize
	}
	return &Hub{
		registry: registry,
		events:   make(chan domain.PixelUpdate, queueSize),
		clock:    clock,
		metrics:  m,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Publish queues update for fan-out and returns immediately.
func (h *Hub) Publish(update domain.PixelUpdate) {
	select {
	case h.events <- update:
		h.metrics.Published(true, len(h.events))
	default:
		h.metrics.Published(false, len(h.events))
		slog.Warn("Hub queue full, dropping pixel update",
			"game_id", update.GameID.String(),
			"capacity", cap(h.events),
		)
	}
}

// Stop ends the dispatcher. Updates still queued are discarded.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })

	timeout := h.clock.NewTimer(stopTimeout)
	defer timeout.Stop()

	select {
	case <-h.stopped:
		slog.Info("Hub stopped")
	case <-timeout.Chan():
		slog.Warn("Hub stop timeout exceeded", "timeout", stopTimeout)
	}
}

func (h *Hub) run() {
	defer close(h.stopped)

	for {
		select {
		case <-h.done:
			return
		case update := <-h.events:
			h.dispatch(update)
		}
	}
}

// dispatch fans one update out and keeps the dispatcher alive if it panics.
func (h *Hub) dispatch(update domain.PixelUpdate) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Hub panic recovered", "panic", r, "game_id", update.GameID.String())
			h.metrics.PanicRecovered()
		}
	}()

	start := h.clock.Now()
	delivered, dropped := h.fanOut(update)
	h.metrics.FannedOut(delivered, dropped, h.clock.Since(start))

	if dropped > 0 {
		slog.Debug("Dropped pixel update for slow subscribers",
			"game_id", update.GameID.String(),
			"dropped", dropped,
			"delivered", delivered,
		)
	}
}

// fanOut offers update to every current subscriber of its game. The registry
// lock is not held while sending.
func (h *Hub) fanOut(update domain.PixelUpdate) (delivered, dropped int) {
	for _, ch := range h.registry.Snapshot(update.GameID) {
		select {
		case ch <- update:
			delivered++
		default:
			dropped++
		}
	}
	return delivered, dropped
}
