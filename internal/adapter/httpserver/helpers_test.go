package httpserver

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/blace/internal/broadcast"
	"github.com/pscheid92/blace/internal/domain"
	"github.com/pscheid92/blace/internal/platform/config"
)

// --- Mock implementations ---

type mockAppService struct {
	createGameFn  func(ctx context.Context, name string, width, height int) (*domain.Game, error)
	putPixelFn    func(ctx context.Context, gameID uuid.UUID, x, y int, pixel domain.Pixel) error
	getGameFn     func(ctx context.Context, gameID uuid.UUID) (*domain.Game, error)
	listGamesFn   func(ctx context.Context) ([]domain.Game, error)
	getGameDataFn func(ctx context.Context, gameID uuid.UUID) (*domain.GameData, error)
}

func (m *mockAppService) CreateGame(ctx context.Context, name string, width, height int) (*domain.Game, error) {
	if m.createGameFn != nil {
		return m.createGameFn(ctx, name, width, height)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAppService) PutPixel(ctx context.Context, gameID uuid.UUID, x, y int, pixel domain.Pixel) error {
	if m.putPixelFn != nil {
		return m.putPixelFn(ctx, gameID, x, y, pixel)
	}
	return nil
}

func (m *mockAppService) GetGame(ctx context.Context, gameID uuid.UUID) (*domain.Game, error) {
	if m.getGameFn != nil {
		return m.getGameFn(ctx, gameID)
	}
	return nil, domain.ErrGameNotFound
}

func (m *mockAppService) ListGames(ctx context.Context) ([]domain.Game, error) {
	if m.listGamesFn != nil {
		return m.listGamesFn(ctx)
	}
	return nil, nil
}

func (m *mockAppService) GetGameData(ctx context.Context, gameID uuid.UUID) (*domain.GameData, error) {
	if m.getGameDataFn != nil {
		return m.getGameDataFn(ctx, gameID)
	}
	return nil, domain.ErrGameNotFound
}

// --- Test helpers ---

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:           "development",
		Port:             "0",
		SubscriberBuffer: broadcast.DefaultSessionQueueSize,
		HubQueueSize:     broadcast.DefaultHubQueueSize,
	}
}

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	srv := NewServer(testConfig(), app, broadcast.NewRegistry(nil), clockwork.NewRealClock(), nil, nil)
	t.Cleanup(srv.cancelSessions)

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

// callHandler wraps a handler with error middleware, matching production behavior
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return ErrorHandlingMiddleware()(handler)(c)
}
