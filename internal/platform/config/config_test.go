package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, BackendPebble, cfg.StorageBackend)
	assert.Equal(t, "./data_game", cfg.DataDir)
	assert.Equal(t, "always", cfg.PebbleFsync)
	assert.Equal(t, 16, cfg.SubscriberBuffer)
	assert.Equal(t, 256, cfg.HubQueueSize)
	assert.Equal(t, 1048576, cfg.MaxCanvasCells)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, time.Second, cfg.RedisAOFWait)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("SUBSCRIBER_BUFFER", "32")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, BackendRedis, cfg.StorageBackend)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, 32, cfg.SubscriberBuffer)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown backend", map[string]string{"STORAGE_BACKEND": "leveldb"}, "STORAGE_BACKEND must be one of"},
		{"redis without url", map[string]string{"STORAGE_BACKEND": "redis"}, "REDIS_URL is required for the redis backend"},
		{"postgres without url", map[string]string{"STORAGE_BACKEND": "postgres"}, "DATABASE_URL is required for the postgres backend"},
		{"empty data dir", map[string]string{"DATA_DIR": ""}, "DATA_DIR is required for the pebble backend"},
		{"bad fsync", map[string]string{"PEBBLE_FSYNC": "sometimes"}, "PEBBLE_FSYNC must be one of"},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT must be one of"},
		{"zero buffer", map[string]string{"SUBSCRIBER_BUFFER": "0"}, "SUBSCRIBER_BUFFER must be positive"},
		{"negative queue", map[string]string{"HUB_QUEUE_SIZE": "-1"}, "HUB_QUEUE_SIZE must be positive"},
		{"negative aof wait", map[string]string{"REDIS_AOF_WAIT": "-1s"}, "REDIS_AOF_WAIT must not be negative"},
		{"zero shutdown", map[string]string{"SHUTDOWN_TIMEOUT": "0s"}, "SHUTDOWN_TIMEOUT must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MemoryBackendNeedsNothing(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("DATA_DIR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
}
