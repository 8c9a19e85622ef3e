// Package canvas implements the canvas store: game metadata, the game index and
// the pixel grid of every game, persisted through a domain.KVStore.
//
// Keys are "game:<id>" (metadata), "grid:<id>" (canvas) and "game_list" (index),
// all holding JSON. Every pixel write rewrites the full grid of its game.
package canvas
