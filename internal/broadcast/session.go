package broadcast

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/blace/internal/domain"
)

const (
	DefaultSessionQueueSize = 16

	writeDeadline  = 5 * time.Second
	pingInterval   = 30 * time.Second
	pongDeadline   = 60 * time.Second
	maxMessageSize = 4096
)

// State is the lifecycle stage of a Session.
type State int32

const (
	StateConnecting State = iota
	StateActive
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session streams the pixel updates of one game to one WebSocket connection.
//
// The delivery queue is never closed: the hub may still hold it in a snapshot
// after the session unsubscribed, and a send on it must not panic.
type Session struct {
	gameID   uuid.UUID
	connID   uuid.UUID
	conn     *websocket.Conn
	registry *Registry
	clock    clockwork.Clock

	sendCh   chan domain.PixelUpdate
	doneCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	state    atomic.Int32
}

func NewSession(conn *websocket.Conn, gameID uuid.UUID, registry *Registry, clock clockwork.Clock, queueSize int) *Session {
	if queueSize <= 0 {
		queueSize = DefaultSessionQueueSize
	}
	return &Session{
		gameID:   gameID,
		connID:   uuid.New(),
		conn:     conn,
		registry: registry,
		clock:    clock,
		sendCh:   make(chan domain.PixelUpdate, queueSize),
		doneCh:   make(chan struct{}),
	}
}

func (s *Session) ConnID() uuid.UUID { return s.connID }

func (s *Session) State() State { return State(s.state.Load()) }

// Run subscribes the session and serves the connection until the peer closes
// it, the transport fails or ctx is cancelled. On cancellation the peer
// receives a going-away close frame. Run always unsubscribes before returning.
func (s *Session) Run(ctx context.Context) {
	s.registry.Subscribe(s.gameID, s.connID, s.sendCh)
	s.state.Store(int32(StateActive))
	slog.DebugContext(ctx, "Session active", "game_id", s.gameID.String(), "conn_id", s.connID.String())

	s.wg.Add(1)
	go s.writeLoop()

	stop := context.AfterFunc(ctx, func() {
		s.shutdown(websocket.CloseGoingAway, "server shutting down")
	})
	defer stop()

	s.readLoop()
	s.close()

	slog.DebugContext(ctx, "Session closed", "game_id", s.gameID.String(), "conn_id", s.connID.String())
}

func (s *Session) readLoop() {
	s.conn.SetReadLimit(maxMessageSize)
	s.extendReadDeadline()
	s.conn.SetPongHandler(func(string) error {
		s.extendReadDeadline()
		return nil
	})
	s.conn.SetPingHandler(func(data string) error {
		s.extendReadDeadline()
		err := s.conn.WriteControl(websocket.PongMessage, []byte(data), s.clock.Now().Add(writeDeadline))
		if err == nil || errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil
		}
		return err
	})

	for {
		// inbound data frames carry nothing for us
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				slog.Debug("Session read failed", "conn_id", s.connID.String(), "error", err)
			}
			return
		}
	}
}

func (s *Session) writeLoop() {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case update := <-s.sendCh:
			s.setWriteDeadline()
			if err := s.conn.WriteJSON(update); err != nil {
				slog.Debug("Session write failed", "conn_id", s.connID.String(), "error", err)
				_ = s.conn.Close()
				return
			}
		case <-ticker.Chan():
			s.setWriteDeadline()
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = s.conn.Close()
				return
			}
		case <-s.doneCh:
			return
		}
	}
}

// shutdown stops the writer, sends a close frame and closes the socket. The
// reader then fails and Run finishes the teardown.
func (s *Session) shutdown(code int, reason string) {
	s.stopWriter()

	msg := websocket.FormatCloseMessage(code, reason)
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, s.clock.Now().Add(writeDeadline))
	_ = s.conn.Close()
}

func (s *Session) close() {
	s.state.Store(int32(StateClosing))
	s.registry.Unsubscribe(s.gameID, s.connID)
	s.stopWriter()
	_ = s.conn.Close()
	s.state.Store(int32(StateClosed))
}

func (s *Session) stopWriter() {
	s.stopOnce.Do(func() { close(s.doneCh) })
	s.wg.Wait()
}

func (s *Session) extendReadDeadline() {
	_ = s.conn.SetReadDeadline(s.clock.Now().Add(pongDeadline))
}

func (s *Session) setWriteDeadline() {
	_ = s.conn.SetWriteDeadline(s.clock.Now().Add(writeDeadline))
}
