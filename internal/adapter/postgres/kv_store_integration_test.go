package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pscheid92/blace/internal/canvas"
	"github.com/pscheid92/blace/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_PutGet(t *testing.T) {
	store := NewKVStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "grid:a", []byte("first")))
	require.NoError(t, store.Put(ctx, "grid:a", []byte("second")))

	got, found, err := store.Get(ctx, "grid:a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("second"), got)
}

func TestKVStore_GetMissing(t *testing.T) {
	store := NewKVStore(setupTestDB(t))

	got, found, err := store.Get(context.Background(), "game:missing")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestKVStore_Ping(t *testing.T) {
	store := NewKVStore(setupTestDB(t))

	assert.NoError(t, store.Ping(context.Background()))
}

func TestRunMigrationsWithLock_IsIdempotent(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, RunMigrationsWithLock(ctx, pool))

	var version int
	require.NoError(t, pool.QueryRow(ctx, "SELECT version FROM public.schema_version").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestKVStore_BacksCanvasStore(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := canvas.NewStore(NewKVStore(pool))

	game := domain.Game{ID: uuid.New(), Name: "pg", Width: 2, Height: 2, CreatedAt: 7}
	require.NoError(t, store.CreateGame(ctx, game))
	require.NoError(t, store.PutPixel(ctx, game.ID, 0, 1, domain.Pixel{R: 10, G: 20, B: 30}))

	reopened := canvas.NewStore(NewKVStore(pool))
	c, err := reopened.Canvas(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Canvas{domain.White, domain.White, {R: 10, G: 20, B: 30}, domain.White}, c)

	var rows int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM kv").Scan(&rows))
	assert.Equal(t, 3, rows)
}
