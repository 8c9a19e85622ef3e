package pebblestore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/pscheid92/blace/internal/domain"
)

const backend = "pebble"

var ErrClosed = errors.New("pebble: database closed")

// FsyncMode defines durability behavior for write operations.
type FsyncMode int

const (
	FsyncModeUnspecified FsyncMode = iota
	// FsyncModeAlways syncs the WAL on every write before it is acknowledged.
	FsyncModeAlways
	// FsyncModeInterval lets Pebble coalesce WAL syncs within FsyncInterval.
	FsyncModeInterval
	// FsyncModeNever never forces a WAL sync. A crash can lose acknowledged pixels.
	FsyncModeNever
)

// ParseFsyncMode maps the PEBBLE_FSYNC setting to a mode.
func ParseFsyncMode(s string) (FsyncMode, error) {
	switch s {
	case "always":
		return FsyncModeAlways, nil
	case "interval":
		return FsyncModeInterval, nil
	case "never":
		return FsyncModeNever, nil
	default:
		return FsyncModeUnspecified, fmt.Errorf("unknown fsync mode %q", s)
	}
}

type Options struct {
	DataDir       string
	Fsync         FsyncMode
	FsyncInterval time.Duration
	// PebbleOptions allows advanced tuning. Defaults are used when nil.
	PebbleOptions *pebble.Options
	Metrics       MetricsHook
}

// MetricsHook receives one observation per storage operation.
type MetricsHook interface {
	ObserveOp(backend, op string, elapsed time.Duration, bytes int, err error)
}

type noopMetrics struct{}

func (noopMetrics) ObserveOp(string, string, time.Duration, int, error) {}

// DB wraps a Pebble instance and implements domain.KVStore.
type DB struct {
	inner     *pebble.DB
	writeSync bool
	metrics   MetricsHook
	closed    atomic.Bool
}

var _ domain.KVStore = (*DB)(nil)

func Open(opts Options) (*DB, error) {
	if opts.DataDir == "" {
		return nil, errors.New("pebble: Options.DataDir is required")
	}

	po := opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}

	switch opts.Fsync {
	case FsyncModeAlways, FsyncModeNever:
	case FsyncModeInterval:
		if opts.FsyncInterval <= 0 {
			opts.FsyncInterval = 5 * time.Millisecond
		}
		interval := opts.FsyncInterval
		po.WALMinSyncInterval = func() time.Duration { return interval }
	default:
		// unspecified behaves like always; a pixel must survive a crash once acknowledged
		opts.Fsync = FsyncModeAlways
	}

	inner, err := pebble.Open(opts.DataDir, po)
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", opts.DataDir, err)
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &DB{
		inner:     inner,
		writeSync: opts.Fsync != FsyncModeNever,
		metrics:   metrics,
	}, nil
}

func (db *DB) Close() error {
	if db == nil || db.inner == nil || !db.closed.CompareAndSwap(false, true) {
		return nil
	}
	return db.inner.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	if db.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}

// Get copies the value for key; Pebble's buffer is only valid until the closer runs.
func (db *DB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := db.usable(ctx); err != nil {
		return nil, false, err
	}

	start := time.Now()
	val, closer, err := db.inner.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		db.metrics.ObserveOp(backend, "get", time.Since(start), 0, nil)
		return nil, false, nil
	}
	if err != nil {
		db.metrics.ObserveOp(backend, "get", time.Since(start), 0, err)
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	defer closer.Close()

	buf := append([]byte(nil), val...)
	db.metrics.ObserveOp(backend, "get", time.Since(start), len(buf), nil)
	return buf, true, nil
}

// Put writes through a single-op batch committed with the configured sync policy.
func (db *DB) Put(ctx context.Context, key string, value []byte) error {
	if err := db.usable(ctx); err != nil {
		return err
	}

	start := time.Now()
	b := db.inner.NewBatch()
	defer b.Close()

	err := b.Set([]byte(key), value, nil)
	if err == nil {
		err = db.commit(b)
	}
	db.metrics.ObserveOp(backend, "put", time.Since(start), len(value), err)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (db *DB) commit(b *pebble.Batch) error {
	syncMode := pebble.NoSync
	if db.writeSync {
		syncMode = pebble.Sync
	}
	return b.Commit(syncMode)
}

func (db *DB) usable(ctx context.Context) error {
	if db.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}
