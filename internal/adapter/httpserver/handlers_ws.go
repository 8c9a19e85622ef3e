package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/blace/internal/broadcast"
	apperrors "github.com/pscheid92/blace/internal/platform/errors"
)

func (s *Server) registerWebSocketRoutes() {
	s.echo.GET("/ws/:game_id", s.handleWebSocket)
}

// handleWebSocket upgrades the request into a live feed of one game's pixel
// updates. The handler blocks for the lifetime of the session.
func (s *Server) handleWebSocket(c echo.Context) error {
	gameID, err := parseGameID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := s.app.GetGame(ctx, gameID); err != nil {
		return fromDomain(err, "Failed to get game").WithField("game_id", gameID.String())
	}

	if !s.trackSession() {
		return apperrors.UnavailableError("Server is shutting down", nil)
	}
	defer s.sessions.Done()

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		slog.WarnContext(ctx, "WebSocket upgrade failed", "game_id", gameID, "error", err)
		return nil
	}

	session := broadcast.NewSession(conn, gameID, s.registry, s.clock, s.config.SubscriberBuffer)
	slog.InfoContext(ctx, "WebSocket session opened", "game_id", gameID, "conn_id", session.ConnID())
	session.Run(s.sessionCtx)
	slog.InfoContext(ctx, "WebSocket session closed", "game_id", gameID, "conn_id", session.ConnID())

	return nil
}
