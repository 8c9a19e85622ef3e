// Package pebblestore keeps canvas state in an embedded Pebble database.
//
// It is the default backend: a single data directory, no external process,
// and a WAL that is synced according to the configured FsyncMode before a
// write is acknowledged.
package pebblestore
