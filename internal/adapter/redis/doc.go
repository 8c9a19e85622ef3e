// Package redis keeps canvas state in Redis as plain string keys.
//
// Every command passes through two hooks: one records storage metrics, the
// other is a circuit breaker that fails fast while Redis is unhealthy. An open
// circuit surfaces as domain.ErrStorageUnavailable. Writes are acknowledged
// only after WAITAOF confirms the local fsync, so the server must run with
// appendonly yes.
package redis
