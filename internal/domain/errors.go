package domain

import "errors"

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrOutOfBounds       = errors.New("pixel coordinates out of bounds")
	ErrInvalidDimensions = errors.New("invalid canvas dimensions")
	ErrInvalidName       = errors.New("invalid game name")

	// ErrStorageUnavailable marks storage failures that are expected to heal,
	// such as an open circuit breaker.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
