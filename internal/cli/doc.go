// Package cli contains the Cobra commands of blacectl, a small client for a
// running canvas server. Every command talks to the server over its public
// REST and WebSocket endpoints.
package cli
