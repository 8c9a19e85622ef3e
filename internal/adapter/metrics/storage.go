package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorageMetrics tracks key-value operations of the configured backend.
type StorageMetrics struct {
	OpsTotal          *prometheus.CounterVec
	OpDuration        *prometheus.HistogramVec
	BytesTotal        *prometheus.CounterVec
	ConnectionErrors  *prometheus.CounterVec
	CircuitState      *prometheus.GaugeVec
	CircuitTransition *prometheus.CounterVec
}

// NewStorageMetrics creates and registers storage metrics on the given registry.
func NewStorageMetrics(reg prometheus.Registerer) *StorageMetrics {
	m := &StorageMetrics{
		OpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "Total number of storage operations, by backend, operation and result.",
		}, []string{"backend", "operation", "result"}),
		OpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Duration of storage operations in seconds.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 1.0},
		}, []string{"backend", "operation"}),
		BytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "bytes_total",
			Help:      "Total number of value bytes read or written.",
		}, []string{"backend", "operation"}),
		ConnectionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "connection_errors_total",
			Help:      "Total number of failed connection attempts to the backend.",
		}, []string{"backend"}),
		CircuitState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"backend"}),
		CircuitTransition: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "circuit_breaker_transitions_total",
			Help:      "Total number of circuit breaker state changes, by target state.",
		}, []string{"backend", "state"}),
	}

	reg.MustRegister(m.OpsTotal, m.OpDuration, m.BytesTotal, m.ConnectionErrors, m.CircuitState, m.CircuitTransition)
	return m
}

// ObserveOp records one storage operation.
func (m *StorageMetrics) ObserveOp(backend, op string, elapsed time.Duration, bytes int, err error) {
	if m == nil {
		return
	}
	m.OpsTotal.WithLabelValues(backend, op, resultLabel(err)).Inc()
	m.OpDuration.WithLabelValues(backend, op).Observe(elapsed.Seconds())
	if bytes > 0 {
		m.BytesTotal.WithLabelValues(backend, op).Add(float64(bytes))
	}
}

func (m *StorageMetrics) ConnectionFailed(backend string) {
	if m == nil {
		return
	}
	m.ConnectionErrors.WithLabelValues(backend).Inc()
}

// CircuitChanged records a breaker transition; state is 0 closed, 1 half-open, 2 open.
func (m *StorageMetrics) CircuitChanged(backend, name string, state float64) {
	if m == nil {
		return
	}
	m.CircuitState.WithLabelValues(backend).Set(state)
	m.CircuitTransition.WithLabelValues(backend, name).Inc()
}
