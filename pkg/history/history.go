package history

import (
	"sync"

	"github.com/vango-dev/vroute/pkg/routepath"
)

// History is the environment surface the navigation controller drives.
type History interface {
	// Current returns the current location.
	Current() routepath.Location

	// Push adds a new history entry and makes it current.
	Push(loc routepath.Location) error

	// Replace overwrites the current entry.
	Replace(loc routepath.Location) error

	// OnChange registers fn for location changes that originate outside
	// the router, such as back/forward. It returns an unsubscribe func.
	OnChange(fn func(routepath.Location)) (unsubscribe func())
}

// Async is implemented by adapters that report external changes from a
// loop that must keep running while the resulting navigation is in flight,
// such as a socket read loop. Navigations started by those changes run on
// their own goroutines.
type Async interface {
	AsyncChanges() bool
}

// Reverter is implemented by adapters that can undo the most recent
// external change by moving the cursor back to the entry it left.
// Revert does not notify OnChange handlers. It reports false when there is
// nothing to undo, for example after a Push or Replace.
type Reverter interface {
	Revert() bool
}

// listeners is an ordered set of change handlers.
type listeners struct {
	mu   sync.Mutex
	next int
	fns  []listener
}

type listener struct {
	id int
	fn func(routepath.Location)
}

func (l *listeners) add(fn func(routepath.Location)) func() {
	l.mu.Lock()
	id := l.next
	l.next++
	l.fns = append(l.fns, listener{id: id, fn: fn})
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			for i, ln := range l.fns {
				if ln.id == id {
					l.fns = append(l.fns[:i:i], l.fns[i+1:]...)
					return
				}
			}
		})
	}
}

// notify calls every handler in registration order. Handlers run without
// the lock held, so they may subscribe or unsubscribe.
func (l *listeners) notify(loc routepath.Location) {
	l.mu.Lock()
	fns := make([]func(routepath.Location), len(l.fns))
	for i, ln := range l.fns {
		fns[i] = ln.fn
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(loc)
	}
}

func (l *listeners) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}
