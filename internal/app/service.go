package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/blace/internal/adapter/metrics"
	"github.com/pscheid92/blace/internal/domain"
)

const maxNameLength = 128

// Service is the application layer. It is the only component that talks to
// both the canvas store and the broadcast side.
type Service struct {
	store     domain.CanvasStore
	publisher domain.Publisher
	clock     clockwork.Clock
	metrics   *metrics.CanvasMetrics
	maxCells  int
}

// NewService creates the application service. maxCells bounds width*height of
// new games; zero means unbounded. m may be nil.
func NewService(store domain.CanvasStore, publisher domain.Publisher, clock clockwork.Clock, maxCells int, m *metrics.CanvasMetrics) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		clock:     clock,
		metrics:   m,
		maxCells:  maxCells,
	}
}

// CreateGame creates a game with a fresh id and an all-white canvas.
func (s *Service) CreateGame(ctx context.Context, name string, width, height int) (*domain.Game, error) {
	name = strings.TrimSpace(name)
	if len(name) > maxNameLength {
		return nil, fmt.Errorf("%w: longer than %d characters", domain.ErrInvalidName, maxNameLength)
	}
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: width and height must be at least 1", domain.ErrInvalidDimensions)
	}
	if s.maxCells > 0 && width > s.maxCells/height {
		return nil, fmt.Errorf("%w: canvas exceeds %d cells", domain.ErrInvalidDimensions, s.maxCells)
	}

	game := domain.Game{
		ID:        uuid.New(),
		Name:      name,
		Width:     width,
		Height:    height,
		CreatedAt: s.clock.Now().Unix(),
	}
	if err := s.store.CreateGame(ctx, game); err != nil {
		return nil, err
	}

	s.metrics.GameCreated()
	slog.InfoContext(ctx, "Game created",
		"game_id", game.ID.String(),
		"width", width,
		"height", height,
	)
	return &game, nil
}

// PutPixel writes one cell and, once it is durable, announces it to the
// game's observers.
func (s *Service) PutPixel(ctx context.Context, gameID uuid.UUID, x, y int, pixel domain.Pixel) error {
	start := s.clock.Now()
	err := s.store.PutPixel(ctx, gameID, x, y, pixel)
	s.metrics.PixelWritten(writeResult(err), s.clock.Since(start))
	if err != nil {
		return err
	}

	s.publisher.Publish(domain.PixelUpdate{GameID: gameID, X: x, Y: y, Pixel: pixel})
	return nil
}

func (s *Service) GetGame(ctx context.Context, gameID uuid.UUID) (*domain.Game, error) {
	return s.store.Game(ctx, gameID)
}

func (s *Service) ListGames(ctx context.Context) ([]domain.Game, error) {
	return s.store.Games(ctx)
}

// GetGameData returns the game together with a snapshot of its canvas.
func (s *Service) GetGameData(ctx context.Context, gameID uuid.UUID) (*domain.GameData, error) {
	game, err := s.store.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	canvas, err := s.store.Canvas(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return &domain.GameData{Game: *game, Canvas: canvas}, nil
}

func writeResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrGameNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrOutOfBounds):
		return "out_of_bounds"
	default:
		return "error"
	}
}
