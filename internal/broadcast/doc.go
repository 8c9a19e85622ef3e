// Package broadcast fans accepted pixel updates out to live WebSocket sessions.
//
// The Registry maps each game to the delivery queues of its sessions. The Hub
// takes one update at a time from its bounded queue, snapshots the game's
// subscribers and hands the update to each queue without blocking; a full
// queue drops the update for that subscriber only. A Session owns one
// connection: a writer goroutine drains its queue onto the socket while the
// reader loop services control frames until the peer goes away.
package broadcast
