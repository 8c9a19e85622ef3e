package redis

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/pscheid92/blace/internal/adapter/metrics"
	goredis "github.com/redis/go-redis/v9"
)

const backend = "redis"

// MetricsHook implements goredis.Hook and records every command as a storage operation.
type MetricsHook struct {
	m *metrics.StorageMetrics
}

var _ goredis.Hook = (*MetricsHook)(nil)

func NewMetricsHook(m *metrics.StorageMetrics) *MetricsHook {
	return &MetricsHook{m: m}
}

func (h *MetricsHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.m.ConnectionFailed(backend)
		}
		return conn, err
	}
}

func (h *MetricsHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)

		// a missing key is a successful lookup
		observed := err
		if errors.Is(err, goredis.Nil) {
			observed = nil
		}
		h.m.ObserveOp(backend, cmd.Name(), time.Since(start), payloadSize(cmd), observed)

		return err
	}
}

func (h *MetricsHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		h.m.ObserveOp(backend, "pipeline", time.Since(start), 0, err)
		return err
	}
}

// payloadSize is the value size of GET replies and SET arguments.
func payloadSize(cmd goredis.Cmder) int {
	switch cmd.Name() {
	case "get":
		if c, ok := cmd.(*goredis.StringCmd); ok {
			return len(c.Val())
		}
	case "set":
		if args := cmd.Args(); len(args) > 2 {
			switch v := args[2].(type) {
			case []byte:
				return len(v)
			case string:
				return len(v)
			}
		}
	}
	return 0
}
