package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/blace/internal/adapter/metrics"
	"github.com/pscheid92/blace/internal/adapter/websocket"
	"github.com/pscheid92/blace/internal/broadcast"
	"github.com/pscheid92/blace/internal/domain"
	"github.com/pscheid92/blace/internal/platform/config"
)

type appService interface {
	CreateGame(ctx context.Context, name string, width, height int) (*domain.Game, error)
	PutPixel(ctx context.Context, gameID uuid.UUID, x, y int, pixel domain.Pixel) error
	GetGame(ctx context.Context, gameID uuid.UUID) (*domain.Game, error)
	ListGames(ctx context.Context) ([]domain.Game, error)
	GetGameData(ctx context.Context, gameID uuid.UUID) (*domain.GameData, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app      appService
	registry *broadcast.Registry
	upgrader *ws.Upgrader
	clock    clockwork.Clock

	metricsRegistry *prometheus.Registry
	httpMetrics     *metrics.HTTPMetrics

	// sessionCtx is cancelled on shutdown; every live session closes with going-away.
	sessionCtx     context.Context
	cancelSessions context.CancelFunc
	sessionsMu     sync.Mutex
	closing        bool
	sessions       sync.WaitGroup

	healthChecks []HealthCheck
	startTime    time.Time
}

// NewServer wires the REST API, the WebSocket feed and the operational endpoints.
// reg may be nil, in which case no metrics are collected or served.
func NewServer(cfg *config.Config, app appService, registry *broadcast.Registry, clock clockwork.Clock, reg *prometheus.Registry, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	sessionCtx, cancel := context.WithCancel(context.Background())

	srv := &Server{
		echo:            e,
		config:          cfg,
		app:             app,
		registry:        registry,
		upgrader:        websocket.NewUpgrader(cfg.AppURL, cfg.IsDevelopment()),
		clock:           clock,
		metricsRegistry: reg,
		sessionCtx:      sessionCtx,
		cancelSessions:  cancel,
		healthChecks:    healthChecks,
		startTime:       clock.Now(),
	}
	if reg != nil {
		srv.httpMetrics = metrics.NewHTTPMetrics(reg)
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown closes all live sessions, then stops accepting requests and waits
// for in-flight ones until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.sessionsMu.Lock()
	s.closing = true
	s.sessionsMu.Unlock()
	s.cancelSessions()

	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		slog.Warn("Timed out waiting for WebSocket sessions to close")
	}

	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// trackSession registers a session with the shutdown wait group. It reports
// false once shutdown has begun.
func (s *Server) trackSession() bool {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if s.closing {
		return false
	}
	s.sessions.Add(1)
	return true
}
