package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/pscheid92/blace/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// errNotDurable means the server did not fsync a write to its AOF in time.
var errNotDurable = errors.New("write not fsynced to the append-only file")

// KVStore keeps values as plain Redis strings. With a positive aofTimeout,
// Put waits (WAITAOF) until the local AOF has fsynced the write, which
// requires the server to run with appendonly enabled.
type KVStore struct {
	rdb        *goredis.Client
	aofTimeout time.Duration
}

var _ domain.KVStore = (*KVStore)(nil)

func NewKVStore(rdb *goredis.Client, aofTimeout time.Duration) *KVStore {
	return &KVStore{rdb: rdb, aofTimeout: aofTimeout}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrap("get", key, err)
	}
	return val, true, nil
}

func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return wrap("set", key, err)
	}
	if s.aofTimeout <= 0 {
		return nil
	}

	acks, err := s.rdb.Do(ctx, "WAITAOF", 1, 0, s.aofTimeout.Milliseconds()).Slice()
	if err != nil {
		return wrap("waitaof", key, err)
	}
	if err := checkAOFAck(acks); err != nil {
		return wrap("waitaof", key, err)
	}
	return nil
}

// checkAOFAck inspects the WAITAOF reply [numlocal, numreplicas].
func checkAOFAck(reply []any) error {
	if len(reply) != 2 {
		return fmt.Errorf("unexpected WAITAOF reply %v", reply)
	}
	local, ok := reply[0].(int64)
	if !ok {
		return fmt.Errorf("unexpected WAITAOF reply %v", reply)
	}
	if local < 1 {
		return errNotDurable
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return wrap("ping", "", err)
	}
	return nil
}

func (s *KVStore) Close() error {
	return s.rdb.Close()
}

func wrap(op, key string, err error) error {
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return fmt.Errorf("redis %s %s: %w: %w", op, key, domain.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("redis %s %s: %w", op, key, err)
}
