package domain

import (
	"context"

	"github.com/google/uuid"
)

// Game is the metadata of one shared canvas. CreatedAt is in unix seconds.
type Game struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt int64     `json:"created_at"`
}

// Cells returns the number of pixels on the game's canvas.
func (g *Game) Cells() int {
	return g.Width * g.Height
}

// Contains reports whether (x, y) lies on the game's canvas.
func (g *Game) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// GameData is a game together with its materialized canvas.
type GameData struct {
	Game   Game   `json:"game_info"`
	Canvas Canvas `json:"grid"`
}

type CanvasStore interface {
	CreateGame(ctx context.Context, game Game) error
	Game(ctx context.Context, gameID uuid.UUID) (*Game, error)
	Games(ctx context.Context) ([]Game, error)
	Canvas(ctx context.Context, gameID uuid.UUID) (Canvas, error)
	PutPixel(ctx context.Context, gameID uuid.UUID, x, y int, pixel Pixel) error
}
