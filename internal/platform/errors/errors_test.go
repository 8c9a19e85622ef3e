package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("pebble: closed")

	tests := []struct {
		name   string
		err    *Error
		typ    ErrorType
		status int
	}{
		{"validation", ValidationError("bad width"), TypeValidation, http.StatusBadRequest},
		{"not found", NotFoundError("Game not found"), TypeNotFound, http.StatusNotFound},
		{"internal", InternalError("failed to store canvas", cause), TypeInternal, http.StatusInternalServerError},
		{"unavailable", UnavailableError("storage unavailable", cause), TypeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
			assert.NotNil(t, tt.err.Context)
			assert.Contains(t, tt.err.Error(), string(tt.typ))
		})
	}
}

func TestError_IncludesCause(t *testing.T) {
	err := InternalError("failed to store canvas", fmt.Errorf("disk full"))

	assert.Equal(t, "internal: failed to store canvas: disk full", err.Error())
	assert.NotContains(t, InternalError("x", nil).Error(), "<nil>")
}

func TestError_UnknownTypeIs500(t *testing.T) {
	err := &Error{Type: "weird", Message: "?"}
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}

func TestWithField(t *testing.T) {
	err := NotFoundError("Game not found").
		WithField("game_id", "abc").
		WithField("x", 3)

	assert.Equal(t, map[string]any{"game_id": "abc", "x": 3}, err.Context)

	bare := &Error{Type: TypeValidation}
	bare.WithField("k", "v")
	assert.Equal(t, "v", bare.Context["k"])
}

func TestToResponse(t *testing.T) {
	resp := ValidationError("Pixel coordinates out of bounds").WithField("x", 9).ToResponse()

	assert.Equal(t, "Pixel coordinates out of bounds", resp.Error)
	assert.Equal(t, TypeValidation, resp.Type)
	assert.Equal(t, 9, resp.Context["x"])
}

func TestAsStructuredError(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))

	original := NotFoundError("Game not found")
	wrapped := fmt.Errorf("handler: %w", original)
	assert.Same(t, original, AsStructuredError(wrapped))

	plain := errors.New("boom")
	converted := AsStructuredError(plain)
	require.NotNil(t, converted)
	assert.Equal(t, TypeInternal, converted.Type)
	assert.ErrorIs(t, converted, plain)
}
