// Package websocket configures the HTTP to WebSocket upgrade for live canvas feeds.
package websocket

import (
	"log/slog"
	"net/http"
	"net/url"

	ws "github.com/gorilla/websocket"
)

const (
	readBufferSize  = 1024
	writeBufferSize = 1024
)

// NewUpgrader returns an upgrader whose origin policy comes from NewCheckOrigin.
func NewUpgrader(appURL string, isDevelopment bool) *ws.Upgrader {
	return &ws.Upgrader{
		ReadBufferSize:  readBufferSize,
		WriteBufferSize: writeBufferSize,
		CheckOrigin:     NewCheckOrigin(appURL, isDevelopment),
	}
}

// NewCheckOrigin returns a CheckOrigin function for the canvas feed.
// Without an appURL every origin is accepted, since canvases are public.
// Otherwise it allows empty origins (non-browser clients) and the app's own
// origin, plus localhost origins when isDevelopment is true.
func NewCheckOrigin(appURL string, isDevelopment bool) func(r *http.Request) bool {
	if appURL == "" {
		return func(*http.Request) bool { return true }
	}
	appOrigin := extractOrigin(appURL)

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		if origin == "" || origin == appOrigin {
			return true
		}

		if isDevelopment && isLocalhostOrigin(origin) {
			return true
		}

		slog.Warn("WebSocket origin rejected", "origin", origin, "remote_addr", r.RemoteAddr)
		return false
	}
}

func extractOrigin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func isLocalhostOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
