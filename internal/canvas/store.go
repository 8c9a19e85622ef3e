package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/pscheid92/blace/internal/domain"
	"golang.org/x/sync/singleflight"
)

const gameListKey = "game_list"

func gameKey(gameID uuid.UUID) string { return "game:" + gameID.String() }
func gridKey(gameID uuid.UUID) string { return "grid:" + gameID.String() }

// Store owns every game's canvas and persists it through a domain.KVStore.
// Writes to one game are serialized; reads of one game run concurrently and
// are collapsed into a single KV read when they overlap.
type Store struct {
	kv domain.KVStore

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.RWMutex

	// guards the read-modify-write of the game index
	indexMu sync.Mutex

	reads singleflight.Group
}

var _ domain.CanvasStore = (*Store)(nil)

func NewStore(kv domain.KVStore) *Store {
	return &Store{
		kv:    kv,
		locks: make(map[uuid.UUID]*sync.RWMutex),
	}
}

func (s *Store) lockFor(gameID uuid.UUID) *sync.RWMutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[gameID]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[gameID] = l
	}
	return l
}

// CreateGame stores the game metadata and records its id in the index.
// An existing game with the same id has its metadata replaced; its canvas is kept.
func (s *Store) CreateGame(ctx context.Context, game domain.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("failed to encode game: %w", err)
	}

	l := s.lockFor(game.ID)
	l.Lock()
	err = s.kv.Put(ctx, gameKey(game.ID), data)
	l.Unlock()
	if err != nil {
		return fmt.Errorf("failed to store game: %w", err)
	}

	return s.addToIndex(ctx, game.ID)
}

func (s *Store) addToIndex(ctx context.Context, gameID uuid.UUID) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	ids, err := s.loadIndex(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(ids, gameID) {
		return nil
	}

	data, err := json.Marshal(append(ids, gameID))
	if err != nil {
		return fmt.Errorf("failed to encode game index: %w", err)
	}
	if err := s.kv.Put(ctx, gameListKey, data); err != nil {
		return fmt.Errorf("failed to store game index: %w", err)
	}
	return nil
}

// loadIndex reads the game index. A missing or unreadable index is empty.
func (s *Store) loadIndex(ctx context.Context) ([]uuid.UUID, error) {
	data, found, err := s.kv.Get(ctx, gameListKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load game index: %w", err)
	}
	if !found {
		return nil, nil
	}

	var ids []uuid.UUID
	if err := json.Unmarshal(data, &ids); err != nil {
		slog.WarnContext(ctx, "Discarding malformed game index", "error", err)
		return nil, nil
	}
	return ids, nil
}

// Game returns the metadata of a game, or domain.ErrGameNotFound.
func (s *Store) Game(ctx context.Context, gameID uuid.UUID) (*domain.Game, error) {
	data, found, err := s.kv.Get(ctx, gameKey(gameID))
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if !found {
		return nil, domain.ErrGameNotFound
	}

	var game domain.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("failed to decode game %s: %w", gameID, err)
	}
	return &game, nil
}

// Games lists all games in index order. Index entries without metadata are skipped.
func (s *Store) Games(ctx context.Context) ([]domain.Game, error) {
	s.indexMu.Lock()
	ids, err := s.loadIndex(ctx)
	s.indexMu.Unlock()
	if err != nil {
		return nil, err
	}

	games := make([]domain.Game, 0, len(ids))
	for _, id := range ids {
		game, err := s.Game(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrGameNotFound) {
				continue
			}
			return nil, err
		}
		games = append(games, *game)
	}
	return games, nil
}

// Canvas returns a copy of the game's canvas. A canvas that was never written,
// or whose stored payload is malformed or of the wrong size, reads as all white.
func (s *Store) Canvas(ctx context.Context, gameID uuid.UUID) (domain.Canvas, error) {
	game, err := s.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}

	l := s.lockFor(gameID)
	l.RLock()
	defer l.RUnlock()

	key := fmt.Sprintf("%s/%dx%d", gameID, game.Width, game.Height)
	v, err, _ := s.reads.Do(key, func() (any, error) {
		// shared by every joined caller, so one caller's cancellation must not fail the rest
		return s.loadCanvas(context.WithoutCancel(ctx), game)
	})
	if err != nil {
		return nil, err
	}

	// singleflight hands the same slice to every caller
	return v.(domain.Canvas).Clone(), nil
}

func (s *Store) loadCanvas(ctx context.Context, game *domain.Game) (domain.Canvas, error) {
	data, found, err := s.kv.Get(ctx, gridKey(game.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to load canvas: %w", err)
	}
	if !found {
		return domain.NewCanvas(game.Width, game.Height), nil
	}

	var c domain.Canvas
	if err := json.Unmarshal(data, &c); err != nil {
		slog.WarnContext(ctx, "Resetting malformed canvas", "game_id", game.ID, "error", err)
		return domain.NewCanvas(game.Width, game.Height), nil
	}
	if len(c) != game.Cells() {
		slog.WarnContext(ctx, "Resetting canvas with mismatched size",
			"game_id", game.ID,
			"stored_cells", len(c),
			"expected_cells", game.Cells(),
		)
		return domain.NewCanvas(game.Width, game.Height), nil
	}
	return c, nil
}

// PutPixel sets one cell and persists the whole canvas before returning.
// It fails with domain.ErrGameNotFound or domain.ErrOutOfBounds without
// touching storage.
func (s *Store) PutPixel(ctx context.Context, gameID uuid.UUID, x, y int, pixel domain.Pixel) error {
	// unknown ids must not leave a lock behind
	if _, err := s.Game(ctx, gameID); err != nil {
		return err
	}

	l := s.lockFor(gameID)
	l.Lock()
	defer l.Unlock()

	// re-read under the lock, CreateGame may have replaced the metadata
	game, err := s.Game(ctx, gameID)
	if err != nil {
		return err
	}
	if !game.Contains(x, y) {
		return domain.ErrOutOfBounds
	}

	c, err := s.loadCanvas(ctx, game)
	if err != nil {
		return err
	}
	c[domain.Offset(game.Width, x, y)] = pixel

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode canvas: %w", err)
	}
	if err := s.kv.Put(ctx, gridKey(gameID), data); err != nil {
		return fmt.Errorf("failed to store canvas: %w", err)
	}
	return nil
}
