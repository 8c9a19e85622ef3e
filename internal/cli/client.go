package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/pscheid92/blace/internal/domain"
	apperrors "github.com/pscheid92/blace/internal/platform/errors"
)

// Client is a thin HTTP client for the canvas API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
	Type    apperrors.ErrorType
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (c *Client) CreateGame(ctx context.Context, name string, width, height int) (*domain.Game, error) {
	body := map[string]any{"name": name, "width": width, "height": height}
	var game domain.Game
	if err := c.do(ctx, http.MethodPost, "/api/games", body, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) ListGames(ctx context.Context) ([]domain.Game, error) {
	var games []domain.Game
	if err := c.do(ctx, http.MethodGet, "/api/info", nil, &games); err != nil {
		return nil, err
	}
	return games, nil
}

func (c *Client) GameInfo(ctx context.Context, gameID uuid.UUID) (*domain.Game, error) {
	var game domain.Game
	if err := c.do(ctx, http.MethodGet, "/api/games/"+gameID.String()+"/info", nil, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) GameData(ctx context.Context, gameID uuid.UUID) (*domain.GameData, error) {
	var data domain.GameData
	if err := c.do(ctx, http.MethodGet, "/api/games/"+gameID.String()+"/data", nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// PutPixel returns the server's confirmation message.
func (c *Client) PutPixel(ctx context.Context, gameID uuid.UUID, x, y int, pixel domain.Pixel) (string, error) {
	body := map[string]any{"x": x, "y": y, "pixel": pixel}
	var msg string
	if err := c.do(ctx, http.MethodPost, "/api/games/"+gameID.String()+"/pixels", body, &msg); err != nil {
		return "", err
	}
	return msg, nil
}

// Watch streams pixel updates for a game until ctx is done or the server
// closes the connection. A close initiated by ctx returns nil.
func (c *Client) Watch(ctx context.Context, gameID uuid.UUID, fn func(domain.PixelUpdate) error) error {
	wsURL, err := c.websocketURL(gameID)
	if err != nil {
		return err
	}

	conn, resp, err := ws.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return decodeAPIError(resp)
		}
		return fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		msg := ws.FormatCloseMessage(ws.CloseNormalClosure, "")
		_ = conn.WriteControl(ws.CloseMessage, msg, time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || ws.IsCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		}

		var update domain.PixelUpdate
		if err := json.Unmarshal(data, &update); err != nil {
			return fmt.Errorf("malformed pixel update: %w", err)
		}
		if err := fn(update); err != nil {
			return err
		}
	}
}

func (c *Client) websocketURL(gameID uuid.UUID) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid server URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/" + gameID.String()
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body apperrors.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Error
		apiErr.Type = body.Type
	}
	return apiErr
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
