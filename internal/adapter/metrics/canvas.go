package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CanvasMetrics tracks game creation and pixel writes.
type CanvasMetrics struct {
	GamesCreated  prometheus.Counter
	PixelWrites   *prometheus.CounterVec
	WriteDuration prometheus.Histogram
}

// NewCanvasMetrics creates and registers canvas metrics on the given registry.
func NewCanvasMetrics(reg prometheus.Registerer) *CanvasMetrics {
	m := &CanvasMetrics{
		GamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "canvas",
			Name:      "games_created_total",
			Help:      "Total number of games created.",
		}),
		PixelWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "canvas",
			Name:      "pixel_writes_total",
			Help:      "Total number of pixel writes, by result.",
		}, []string{"result"}),
		WriteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "canvas",
			Name:      "pixel_write_duration_seconds",
			Help:      "Duration of a pixel write including the durable grid rewrite.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
	}

	reg.MustRegister(m.GamesCreated, m.PixelWrites, m.WriteDuration)
	return m
}

func (m *CanvasMetrics) GameCreated() {
	if m == nil {
		return
	}
	m.GamesCreated.Inc()
}

// PixelWritten records a write attempt. result is one of "success",
// "not_found", "out_of_bounds" or "error".
func (m *CanvasMetrics) PixelWritten(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.PixelWrites.WithLabelValues(result).Inc()
	if result == "success" {
		m.WriteDuration.Observe(elapsed.Seconds())
	}
}
