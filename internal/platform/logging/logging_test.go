package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestID(t *testing.T) {
	ids := make(map[string]struct{}, 100)
	for range 100 {
		id := NewRequestID()
		assert.Len(t, id, 12)
		ids[id] = struct{}{}
	}
	assert.Len(t, ids, 100)
}

func TestRequestID_Roundtrip(t *testing.T) {
	id, ok := RequestID(WithRequestID(context.Background(), "abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = RequestID(context.Background())
	assert.False(t, ok)

	_, ok = RequestID(WithRequestID(context.Background(), ""))
	assert.False(t, ok)
}

func TestHandler_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug", "text")

	logger.InfoContext(WithRequestID(context.Background(), "req42"), "Pixel updated", "game_id", "g1")

	out := buf.String()
	assert.Contains(t, out, "request_id=req42")
	assert.Contains(t, out, "game_id=g1")
}

func TestHandler_OmitsMissingRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "text")

	logger.InfoContext(context.Background(), "no id")

	assert.NotContains(t, buf.String(), "request_id")
}

func TestHandler_KeepsAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "json").With("component", "hub").WithGroup("event")

	logger.InfoContext(WithRequestID(context.Background(), "r1"), "dispatched", "x", 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hub", record["component"])
	assert.Equal(t, map[string]any{"x": 1.0, "request_id": "r1"}, record["event"])
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "text")

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}
