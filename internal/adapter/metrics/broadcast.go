package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BroadcastMetrics holds the fan-out and WebSocket session metrics.
type BroadcastMetrics struct {
	ActiveSessions    prometheus.Gauge
	EventsPublished   prometheus.Counter
	EventsDropped     prometheus.Counter
	Deliveries        prometheus.Counter
	DeliveriesDropped prometheus.Counter
	FanoutDuration    prometheus.Histogram
	QueueDepth        prometheus.Gauge
	Panics            prometheus.Counter
}

// NewBroadcastMetrics creates and registers broadcast metrics on the given registry.
func NewBroadcastMetrics(reg prometheus.Registerer) *BroadcastMetrics {
	m := &BroadcastMetrics{
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "active_sessions",
			Help:      "Number of live WebSocket sessions.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "events_published_total",
			Help:      "Total number of pixel updates accepted by the hub.",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "events_dropped_total",
			Help:      "Total number of pixel updates dropped because the hub queue was full.",
		}),
		Deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "deliveries_total",
			Help:      "Total number of pixel updates handed to session queues.",
		}),
		DeliveriesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "deliveries_dropped_total",
			Help:      "Total number of pixel updates dropped because a session queue was full.",
		}),
		FanoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "fanout_duration_seconds",
			Help:      "Duration of fanning one pixel update out to all subscribers.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "queue_depth",
			Help:      "Number of pixel updates waiting in the hub queue.",
		}),
		Panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "panics_total",
			Help:      "Total number of recovered panics in the hub dispatcher.",
		}),
	}

	reg.MustRegister(
		m.ActiveSessions,
		m.EventsPublished,
		m.EventsDropped,
		m.Deliveries,
		m.DeliveriesDropped,
		m.FanoutDuration,
		m.QueueDepth,
		m.Panics,
	)
	return m
}

func (m *BroadcastMetrics) SessionOpened() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

func (m *BroadcastMetrics) SessionClosed() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

func (m *BroadcastMetrics) Published(queued bool, depth int) {
	if m == nil {
		return
	}
	if queued {
		m.EventsPublished.Inc()
	} else {
		m.EventsDropped.Inc()
	}
	m.QueueDepth.Set(float64(depth))
}

func (m *BroadcastMetrics) FannedOut(delivered, dropped int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Deliveries.Add(float64(delivered))
	m.DeliveriesDropped.Add(float64(dropped))
	m.FanoutDuration.Observe(elapsed.Seconds())
}

func (m *BroadcastMetrics) PanicRecovered() {
	if m == nil {
		return
	}
	m.Panics.Inc()
}
