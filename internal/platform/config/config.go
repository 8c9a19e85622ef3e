package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	BackendPebble   = "pebble"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

var (
	backends   = []string{BackendPebble, BackendRedis, BackendPostgres, BackendMemory}
	fsyncModes = []string{"always", "interval", "never"}
	logFormats = []string{"text", "json"}
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8000"`
	AppURL    string `env:"APP_URL"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	StorageBackend string        `env:"STORAGE_BACKEND" default:"pebble"`
	DataDir        string        `env:"DATA_DIR" default:"./data_game"`
	PebbleFsync    string        `env:"PEBBLE_FSYNC" default:"always"`
	FsyncInterval  time.Duration `env:"PEBBLE_FSYNC_INTERVAL" default:"5ms"`
	RedisURL       string        `env:"REDIS_URL"`
	RedisAOFWait   time.Duration `env:"REDIS_AOF_WAIT" default:"1s"`
	DatabaseURL    string        `env:"DATABASE_URL"`

	SubscriberBuffer int `env:"SUBSCRIBER_BUFFER" default:"16"`
	HubQueueSize     int `env:"HUB_QUEUE_SIZE" default:"256"`
	MaxCanvasCells   int `env:"MAX_CANVAS_CELLS" default:"1048576"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if !slices.Contains(backends, cfg.StorageBackend) {
		return fmt.Errorf("STORAGE_BACKEND must be one of %v, got %q", backends, cfg.StorageBackend)
	}

	switch cfg.StorageBackend {
	case BackendRedis:
		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis backend")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
	case BackendPebble:
		if cfg.DataDir == "" {
			return errors.New("DATA_DIR is required for the pebble backend")
		}
		if !slices.Contains(fsyncModes, cfg.PebbleFsync) {
			return fmt.Errorf("PEBBLE_FSYNC must be one of %v, got %q", fsyncModes, cfg.PebbleFsync)
		}
	}

	if !slices.Contains(logFormats, cfg.LogFormat) {
		return fmt.Errorf("LOG_FORMAT must be one of %v, got %q", logFormats, cfg.LogFormat)
	}

	positive := map[string]int{
		"SUBSCRIBER_BUFFER": cfg.SubscriberBuffer,
		"HUB_QUEUE_SIZE":    cfg.HubQueueSize,
		"MAX_CANVAS_CELLS":  cfg.MaxCanvasCells,
	}
	for name, value := range positive {
		if value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, value)
		}
	}

	if cfg.RedisAOFWait < 0 {
		return errors.New("REDIS_AOF_WAIT must not be negative")
	}

	if cfg.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}

	return nil
}
