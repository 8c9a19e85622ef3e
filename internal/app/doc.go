// Package app provides the application service layer.
//
// Orchestrates the canvas use cases: game creation, pixel writes and reads.
// A pixel write is announced to live observers only after the canvas store
// has persisted it. Depends on domain interfaces, not concrete implementations.
package app
