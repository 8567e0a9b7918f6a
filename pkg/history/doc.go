// Package history synchronizes the router with a browser-style history.
//
// A History owns the single current Location. The router writes to it with
// Push (new entry) and Replace (overwrite the current entry), and learns
// about changes the environment made on its own (back/forward) through
// OnChange. Push and Replace never trigger OnChange handlers.
//
// Implementations:
//   - Memory: an in-process entry stack with a cursor, for tests, CLIs and
//     terminal hosts.
//   - Remote: mirrors the history of a browser tab over a WebSocket.
//   - Persistent: a Memory whose stack survives restarts through a Store.
package history
