package history

import (
	"sync"

	"github.com/vango-dev/vroute/pkg/routepath"
)

// Memory is an in-process history: a stack of entries and a cursor.
// It behaves like a browser tab: Push drops every entry after the cursor,
// and Back/Forward/Go move the cursor and report the change to OnChange
// handlers as an external change.
type Memory struct {
	mu      sync.Mutex
	entries []routepath.Location
	index   int

	// left is the cursor before the last Go, or -1.
	left int

	listeners listeners
}

// NewMemory creates a history whose only entry is initial.
// A zero initial location starts at "/".
func NewMemory(initial routepath.Location) *Memory {
	if initial.Path == "" {
		initial.Path = "/"
	}
	return &Memory{entries: []routepath.Location{initial}, left: -1}
}

// Current returns the entry under the cursor.
func (m *Memory) Current() routepath.Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index]
}

// Href returns the current address exactly as it would appear in an
// address bar.
func (m *Memory) Href() string {
	return m.Current().String()
}

// Push appends loc after the cursor, discarding forward entries.
func (m *Memory) Push(loc routepath.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries[:m.index+1], loc)
	m.index++
	m.left = -1
	return nil
}

// Replace overwrites the entry under the cursor.
func (m *Memory) Replace(loc routepath.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.index] = loc
	m.left = -1
	return nil
}

// OnChange registers fn for Back, Forward and Go.
func (m *Memory) OnChange(fn func(routepath.Location)) func() {
	return m.listeners.add(fn)
}

// Back moves one entry back. It reports false at the first entry.
func (m *Memory) Back() bool {
	return m.Go(-1)
}

// Forward moves one entry forward. It reports false at the last entry.
func (m *Memory) Forward() bool {
	return m.Go(1)
}

// Go moves the cursor by delta and notifies OnChange handlers.
// Out-of-range moves and Go(0) do nothing and report false.
func (m *Memory) Go(delta int) bool {
	loc, ok := m.move(delta)
	if !ok {
		return false
	}
	m.listeners.notify(loc)
	return true
}

func (m *Memory) move(delta int) (routepath.Location, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target := m.index + delta
	if delta == 0 || target < 0 || target >= len(m.entries) {
		return routepath.Location{}, false
	}
	m.left = m.index
	m.index = target
	return m.entries[target], true
}

// Revert moves the cursor back to where the last Back, Forward or Go left
// it, without notifying OnChange handlers. Push and Replace clear it.
func (m *Memory) Revert() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.left < 0 || m.left >= len(m.entries) {
		return false
	}
	m.index = m.left
	m.left = -1
	return true
}

// Entries returns a copy of the entry stack.
func (m *Memory) Entries() []routepath.Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]routepath.Location, len(m.entries))
	copy(out, m.entries)
	return out
}

// Index returns the cursor position.
func (m *Memory) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// snapshot returns the entries and cursor under one lock.
func (m *Memory) snapshot() ([]routepath.Location, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]routepath.Location, len(m.entries))
	copy(out, m.entries)
	return out, m.index
}

// restore replaces the whole stack. index is clamped into range.
func (m *Memory) restore(entries []routepath.Location, index int) {
	if len(entries) == 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index >= len(entries) {
		index = len(entries) - 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append([]routepath.Location(nil), entries...)
	m.index = index
	m.left = -1
}

var _ Reverter = (*Memory)(nil)
