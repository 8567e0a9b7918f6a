// Package store persists history stacks in SQLite.
//
// The schema is embedded and applied with golang-migrate when a store is
// opened. A store satisfies history.Store:
//
//	st, err := store.Open(ctx, ".vroute/history.db")
//	h, err := history.OpenPersistent(ctx, st, "default", initial, logger)
package store
