package domain

import "context"

// KVStore is the durable byte store the canvas state lives in.
// Put must not return before the value is durable.
type KVStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}
