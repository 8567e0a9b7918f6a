// Package navigation runs navigations against a route registry and a
// history adapter.
//
// Each call to NavigateTo, each external history change and the initial
// navigation made by Start walk the same state machine:
//
//	Requested -> Matching -> (Redirecting -> Matching)* -> Guarding -> Committing -> Completed
//
// with Aborted reachable from Matching, Redirecting and Guarding.
//
// # Staleness
//
// Every navigation takes the next record ID. A navigation that is no longer
// the most recent one when it reaches a phase boundary, or when it holds the
// commit lock, is aborted: it changes no history entry and notifies no
// subscriber. Its context is cancelled as soon as a newer navigation
// starts, so a guard blocked on I/O can return early.
//
// # Outcomes
//
// An unmatched path is not an error. The location is committed and
// subscribers receive a Navigation with StatusNotFound, a nil Match and the
// configured not-found view. Redirect loops, guard rejections and history
// failures return an error and leave the current location unchanged.
//
// # History operations
//
// A user navigation pushes a new entry. It replaces the current entry
// instead when a redirect was followed, when WithReplace is given, and for
// the initial navigation. An external (pop) navigation only touches history
// when it is redirected (replace) or rejected. A rejected pop moves the
// cursor back when the adapter implements history.Reverter and otherwise
// restores the prior location with replace.
//
// Changes reported by an adapter that implements history.Async run on their
// own goroutines. Their record IDs are taken in the order the adapter
// reports them, so the most recent change still wins.
package navigation
