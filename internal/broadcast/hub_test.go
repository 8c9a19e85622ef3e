package broadcast

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pscheid92/blace/internal/adapter/metrics"
	"github.com/pscheid92/blace/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan domain.PixelUpdate) domain.PixelUpdate {
	t.Helper()
	select {
	case u := <-ch:
		return u
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for pixel update")
		return domain.PixelUpdate{}
	}
}

func assertNothing(t *testing.T, ch <-chan domain.PixelUpdate) {
	t.Helper()
	select {
	case u := <-ch:
		t.Fatalf("unexpected pixel update %+v", u)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_FanOutIsScopedToGame(t *testing.T) {
	r := NewRegistry(nil)
	h := newHub(r, 8, clockwork.NewRealClock(), nil)
	gameA, gameB := uuid.New(), uuid.New()

	a1 := make(chan domain.PixelUpdate, 1)
	a2 := make(chan domain.PixelUpdate, 1)
	b1 := make(chan domain.PixelUpdate, 1)
	r.Subscribe(gameA, uuid.New(), a1)
	r.Subscribe(gameA, uuid.New(), a2)
	r.Subscribe(gameB, uuid.New(), b1)

	update := domain.PixelUpdate{GameID: gameA, X: 1, Y: 0, Pixel: domain.Pixel{R: 255}}
	delivered, dropped := h.fanOut(update)

	assert.Equal(t, 2, delivered)
	assert.Zero(t, dropped)
	assert.Equal(t, update, <-a1)
	assert.Equal(t, update, <-a2)
	assert.Empty(t, b1)
}

func TestHub_FullSubscriberQueueDropsOnlyForThatSubscriber(t *testing.T) {
	r := NewRegistry(nil)
	h := newHub(r, 8, clockwork.NewRealClock(), nil)
	gameID := uuid.New()

	slow := make(chan domain.PixelUpdate, 1)
	fast := make(chan domain.PixelUpdate, 4)
	r.Subscribe(gameID, uuid.New(), slow)
	r.Subscribe(gameID, uuid.New(), fast)

	first := domain.PixelUpdate{GameID: gameID, X: 0}
	second := domain.PixelUpdate{GameID: gameID, X: 1}
	h.fanOut(first)
	delivered, dropped := h.fanOut(second)

	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, first, <-slow)
	assert.Empty(t, slow)
	assert.Equal(t, first, <-fast)
	assert.Equal(t, second, <-fast)
}

func TestHub_NoSubscribers(t *testing.T) {
	h := newHub(NewRegistry(nil), 8, clockwork.NewRealClock(), nil)

	delivered, dropped := h.fanOut(domain.PixelUpdate{GameID: uuid.New()})

	assert.Zero(t, delivered)
	assert.Zero(t, dropped)
}

func TestHub_PublishDeliversAsynchronously(t *testing.T) {
	r := NewRegistry(nil)
	h := NewHub(r, 8, clockwork.NewRealClock(), nil)
	t.Cleanup(h.Stop)
	gameID := uuid.New()
	ch := make(chan domain.PixelUpdate, 1)
	r.Subscribe(gameID, uuid.New(), ch)

	update := domain.PixelUpdate{GameID: gameID, X: 3, Y: 4, Pixel: domain.Pixel{G: 9}}
	h.Publish(update)

	assert.Equal(t, update, receive(t, ch))
}

func TestHub_PublishDropsWhenQueueFull(t *testing.T) {
	m := metrics.NewBroadcastMetrics(prometheus.NewRegistry())
	// no dispatcher, so the queue only fills
	h := newHub(NewRegistry(nil), 1, clockwork.NewRealClock(), m)

	h.Publish(domain.PixelUpdate{X: 1})
	h.Publish(domain.PixelUpdate{X: 2})

	require.Len(t, h.events, 1)
	assert.Equal(t, 1, (<-h.events).X)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsDropped))
}

func TestHub_StopIsIdempotentAndPublishAfterStopIsSafe(t *testing.T) {
	r := NewRegistry(nil)
	h := NewHub(r, 2, clockwork.NewRealClock(), nil)
	gameID := uuid.New()
	ch := make(chan domain.PixelUpdate, 1)
	r.Subscribe(gameID, uuid.New(), ch)

	h.Stop()
	h.Stop()

	assert.NotPanics(t, func() {
		for range 5 {
			h.Publish(domain.PixelUpdate{GameID: gameID})
		}
	})
	assertNothing(t, ch)
}

func TestHub_UnsubscribedQueueStopsReceiving(t *testing.T) {
	r := NewRegistry(nil)
	h := NewHub(r, 8, clockwork.NewRealClock(), nil)
	t.Cleanup(h.Stop)
	gameID, connID := uuid.New(), uuid.New()
	ch := make(chan domain.PixelUpdate, 4)
	r.Subscribe(gameID, connID, ch)

	h.Publish(domain.PixelUpdate{GameID: gameID, X: 1})
	receive(t, ch)

	r.Unsubscribe(gameID, connID)
	h.Publish(domain.PixelUpdate{GameID: gameID, X: 2})
	assertNothing(t, ch)
}

func TestHub_RecoversFromPanicInFanOut(t *testing.T) {
	m := metrics.NewBroadcastMetrics(prometheus.NewRegistry())
	h := newHub(nil, 1, clockwork.NewRealClock(), m)

	// a nil registry makes the snapshot panic
	assert.NotPanics(t, func() { h.dispatch(domain.PixelUpdate{}) })
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Panics))
}
