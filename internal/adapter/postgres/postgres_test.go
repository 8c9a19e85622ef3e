package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pscheid92/blace/internal/adapter/metrics"
	"github.com/stretchr/testify/assert"
)

func TestExtractSSLMode(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"postgres://u:p@localhost/db?sslmode=require", "require"},
		{"postgres://u:p@localhost/db?sslmode=DISABLE", "disable"},
		{"postgres://u:p@localhost/db", "prefer (default)"},
		{"://bad", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, extractSSLMode(tt.url))
		})
	}
}

func TestQueryName(t *testing.T) {
	assert.Equal(t, "select", queryName(getQuery))
	assert.Equal(t, "insert", queryName(putQuery))
	assert.Equal(t, "unknown", queryName("  \n "))
}

func TestMetricsTracer_RecordsStatement(t *testing.T) {
	m := metrics.NewStorageMetrics(prometheus.NewRegistry())
	tracer := NewMetricsTracer(m)

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: putQuery})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: errors.New("boom")})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpsTotal.WithLabelValues("postgres", "insert", "error")))
}

func TestMetricsTracer_IgnoresUntracedContext(t *testing.T) {
	tracer := NewMetricsTracer(nil)

	assert.NotPanics(t, func() {
		tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})
	})
}
