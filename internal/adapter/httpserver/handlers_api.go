package httpserver

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/blace/internal/domain"
	apperrors "github.com/pscheid92/blace/internal/platform/errors"
)

const pixelUpdatedMessage = "Pixel updated successfully"

type createGameRequest struct {
	Name   *string `json:"name"`
	Width  *int    `json:"width"`
	Height *int    `json:"height"`
}

type putPixelRequest struct {
	X     *int          `json:"x"`
	Y     *int          `json:"y"`
	Pixel *domain.Pixel `json:"pixel"`
}

func (s *Server) registerAPIRoutes() {
	api := s.echo.Group("/api")
	api.POST("/games", s.handleCreateGame)
	api.GET("/info", s.handleListGames)
	api.POST("/games/:game_id/pixels", s.handlePutPixel)
	api.GET("/games/:game_id/info", s.handleGameInfo)
	api.GET("/games/:game_id/data", s.handleGameData)
}

func (s *Server) handleCreateGame(c echo.Context) error {
	var req createGameRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.Name == nil || req.Width == nil || req.Height == nil {
		return apperrors.ValidationError("name, width and height are required")
	}

	game, err := s.app.CreateGame(c.Request().Context(), *req.Name, *req.Width, *req.Height)
	if err != nil {
		return fromDomain(err, "Failed to create game").
			WithField("width", *req.Width).
			WithField("height", *req.Height)
	}

	if err := c.JSON(http.StatusOK, game); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handlePutPixel(c echo.Context) error {
	gameID, err := parseGameID(c)
	if err != nil {
		return err
	}

	var req putPixelRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body").WithField("game_id", gameID.String())
	}
	if req.X == nil || req.Y == nil || req.Pixel == nil {
		return apperrors.ValidationError("x, y and pixel are required").WithField("game_id", gameID.String())
	}

	if err := s.app.PutPixel(c.Request().Context(), gameID, *req.X, *req.Y, *req.Pixel); err != nil {
		return fromDomain(err, "Failed to update pixel").
			WithField("game_id", gameID.String()).
			WithField("x", *req.X).
			WithField("y", *req.Y)
	}

	if err := c.JSON(http.StatusOK, pixelUpdatedMessage); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGameInfo(c echo.Context) error {
	gameID, err := parseGameID(c)
	if err != nil {
		return err
	}

	game, err := s.app.GetGame(c.Request().Context(), gameID)
	if err != nil {
		return fromDomain(err, "Failed to get game").WithField("game_id", gameID.String())
	}

	if err := c.JSON(http.StatusOK, game); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListGames(c echo.Context) error {
	games, err := s.app.ListGames(c.Request().Context())
	if err != nil {
		return fromDomain(err, "Failed to get games")
	}
	if games == nil {
		games = []domain.Game{}
	}

	if err := c.JSON(http.StatusOK, games); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGameData(c echo.Context) error {
	gameID, err := parseGameID(c)
	if err != nil {
		return err
	}

	data, err := s.app.GetGameData(c.Request().Context(), gameID)
	if err != nil {
		return fromDomain(err, "Failed to get game data").WithField("game_id", gameID.String())
	}

	if err := c.JSON(http.StatusOK, data); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func parseGameID(c echo.Context) (uuid.UUID, error) {
	raw := c.Param("game_id")
	gameID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid game id").WithField("game_id", raw)
	}
	return gameID, nil
}
