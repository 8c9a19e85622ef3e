package domain

import "github.com/google/uuid"

// PixelUpdate is the event fanned out to observers of a game after a
// successful write. It carries no sequence number.
type PixelUpdate struct {
	GameID uuid.UUID `json:"gameId"`
	X      int       `json:"x"`
	Y      int       `json:"y"`
	Pixel  Pixel     `json:"pixel"`
}

// Publisher accepts pixel updates for fan-out. Publish never blocks and
// never reports delivery failures.
type Publisher interface {
	Publish(update PixelUpdate)
}
