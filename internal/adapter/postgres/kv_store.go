package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/blace/internal/domain"
)

const (
	getQuery = `SELECT value FROM kv WHERE key = $1`
	putQuery = `INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
)

type KVStore struct {
	pool *pgxpool.Pool
}

var _ domain.KVStore = (*KVStore)(nil)

func NewKVStore(pool *pgxpool.Pool) *KVStore {
	return &KVStore{pool: pool}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, getQuery, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrap("get", key, err)
	}
	return value, true, nil
}

// Put commits in its own implicit transaction; the row is durable once it returns.
func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.pool.Exec(ctx, putQuery, key, value); err != nil {
		return wrap("put", key, err)
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return wrap("ping", "", err)
	}
	return nil
}

func (s *KVStore) Close() error {
	s.pool.Close()
	return nil
}

func wrap(op, key string, err error) error {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return fmt.Errorf("postgres %s %s: %w: %w", op, key, domain.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("postgres %s %s: %w", op, key, err)
}
