// Package postgres keeps canvas state in a single PostgreSQL key-value table.
//
// The schema is managed by embedded tern migrations that run under an
// advisory lock, so several replicas can start against the same database.
package postgres
