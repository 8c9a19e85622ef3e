// Package domain defines the core domain types and interfaces.
//
// Concept-oriented files (game.go, canvas.go, storage.go, broadcast.go) hold shared
// types and the cross-cutting interfaces. No implementation code, just contracts.
package domain
