package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/blace/internal/adapter/httpserver"
	"github.com/pscheid92/blace/internal/adapter/memory"
	"github.com/pscheid92/blace/internal/adapter/metrics"
	"github.com/pscheid92/blace/internal/adapter/pebblestore"
	"github.com/pscheid92/blace/internal/adapter/postgres"
	"github.com/pscheid92/blace/internal/adapter/redis"
	"github.com/pscheid92/blace/internal/app"
	"github.com/pscheid92/blace/internal/broadcast"
	"github.com/pscheid92/blace/internal/canvas"
	"github.com/pscheid92/blace/internal/domain"
	"github.com/pscheid92/blace/internal/platform/config"
	"github.com/pscheid92/blace/internal/platform/logging"
	"github.com/pscheid92/blace/internal/platform/retry"
	"github.com/pscheid92/blace/internal/platform/version"
)

const connectTimeout = 30 * time.Second

func connectPolicy(clock clockwork.Clock, backend string) retry.Policy {
	return retry.Policy{
		MaxAttempts:    5,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Clock:          clock,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Storage connection failed, retrying", "backend", backend, "attempt", attempt, "backoff", backoff, "error", err)
		},
	}
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func openStorage(cfg *config.Config, clock clockwork.Clock, m *metrics.StorageMetrics) (domain.KVStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	switch cfg.StorageBackend {
	case config.BackendPebble:
		mode, err := pebblestore.ParseFsyncMode(cfg.PebbleFsync)
		if err != nil {
			return nil, err
		}
		return pebblestore.Open(pebblestore.Options{
			DataDir:       cfg.DataDir,
			Fsync:         mode,
			FsyncInterval: cfg.FsyncInterval,
			Metrics:       m,
		})

	case config.BackendRedis:
		client, err := retry.Do(ctx, connectPolicy(clock, cfg.StorageBackend), retry.Always, func(ctx context.Context) (*redis.KVStore, error) {
			rdb, err := redis.NewClient(ctx, cfg.RedisURL, m)
			if err != nil {
				return nil, err
			}
			return redis.NewKVStore(rdb, cfg.RedisAOFWait), nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return client, nil

	case config.BackendPostgres:
		store, err := retry.Do(ctx, connectPolicy(clock, cfg.StorageBackend), retry.Always, func(ctx context.Context) (*postgres.KVStore, error) {
			pool, err := postgres.Connect(ctx, cfg.DatabaseURL, m)
			if err != nil {
				return nil, err
			}
			if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			return postgres.NewKVStore(pool), nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return store, nil

	case config.BackendMemory:
		slog.Warn("Using in-memory storage, canvases are lost on restart")
		return memory.NewKVStore(), nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

func runGracefulShutdown(cfg *config.Config, srv *httpserver.Server, hub *broadcast.Hub, kv domain.KVStore) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		hub.Stop()

		if err := kv.Close(); err != nil {
			slog.Error("Failed to close storage", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "storage", cfg.StorageBackend, "build", version.Get())

	reg := metrics.NewRegistry()
	canvasMetrics := metrics.NewCanvasMetrics(reg)
	broadcastMetrics := metrics.NewBroadcastMetrics(reg)
	storageMetrics := metrics.NewStorageMetrics(reg)

	kv, err := openStorage(cfg, clock, storageMetrics)
	if err != nil {
		slog.Error("Failed to open storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}

	store := canvas.NewStore(kv)
	registry := broadcast.NewRegistry(broadcastMetrics)
	hub := broadcast.NewHub(registry, cfg.HubQueueSize, clock, broadcastMetrics)
	appSvc := app.NewService(store, hub, clock, cfg.MaxCanvasCells, canvasMetrics)

	healthChecks := []httpserver.HealthCheck{{Name: "storage", Check: kv.Ping}}
	srv := httpserver.NewServer(cfg, appSvc, registry, clock, reg, healthChecks)

	done := runGracefulShutdown(cfg, srv, hub, kv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
