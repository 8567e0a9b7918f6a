package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vroute/pkg/routepath"
)

func loc(href string) routepath.Location {
	return routepath.MustParseLocation(href)
}

func TestMemoryStartsAtInitial(t *testing.T) {
	h := NewMemory(routepath.Location{})
	assert.Equal(t, "/", h.Href())
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 0, h.Index())

	h = NewMemory(loc("/daily?d=1"))
	assert.Equal(t, "/daily?d=1", h.Href())
}

func TestMemoryPushTruncatesForwardEntries(t *testing.T) {
	h := NewMemory(loc("/write"))
	require.NoError(t, h.Push(loc("/daily")))
	require.NoError(t, h.Push(loc("/monthly")))
	require.True(t, h.Back())
	require.True(t, h.Back())

	require.NoError(t, h.Push(loc("/daily#top")))

	assert.Equal(t, []routepath.Location{loc("/write"), loc("/daily#top")}, h.Entries())
	assert.Equal(t, 1, h.Index())
	assert.False(t, h.Forward(), "forward entries must be gone after a push")
}

func TestMemoryReplaceOverwritesCurrent(t *testing.T) {
	h := NewMemory(loc("/"))
	require.NoError(t, h.Replace(loc("/write")))

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, "/write", h.Href())
	assert.False(t, h.Back(), "replace must not leave the replaced entry behind")
}

func TestMemoryRevertUndoesLastMove(t *testing.T) {
	h := NewMemory(loc("/write"))
	require.NoError(t, h.Push(loc("/daily")))
	require.NoError(t, h.Push(loc("/monthly")))

	calls := 0
	h.OnChange(func(routepath.Location) { calls++ })

	assert.False(t, h.Revert(), "nothing to revert before a move")

	require.True(t, h.Go(-2))
	require.True(t, h.Revert())
	assert.Equal(t, 2, h.Index())
	assert.Equal(t, "/monthly", h.Href())
	assert.Equal(t, 1, calls, "revert does not notify")
	assert.Len(t, h.Entries(), 3)
	assert.False(t, h.Revert(), "a move is reverted once")

	require.True(t, h.Back())
	require.NoError(t, h.Replace(loc("/daily?d=1")))
	assert.False(t, h.Revert(), "replace clears the move")
}

func TestMemoryHrefIsBitExact(t *testing.T) {
	h := NewMemory(loc("/"))
	for _, href := range []string{"/write/", "/daily?d=2024-01-02&x=a%20b+c", "/p/caf%C3%A9#h"} {
		require.NoError(t, h.Push(loc(href)))
		assert.Equal(t, href, h.Href())
	}
}

func TestMemoryOnChangeOnlyForExternalMoves(t *testing.T) {
	h := NewMemory(loc("/write"))

	var seen []string
	unsubscribe := h.OnChange(func(l routepath.Location) { seen = append(seen, l.String()) })

	require.NoError(t, h.Push(loc("/daily")))
	require.NoError(t, h.Replace(loc("/daily?d=1")))
	assert.Empty(t, seen, "push and replace are not external changes")

	require.True(t, h.Back())
	require.True(t, h.Forward())
	assert.Equal(t, []string{"/write", "/daily?d=1"}, seen)

	unsubscribe()
	unsubscribe()
	require.True(t, h.Back())
	assert.Len(t, seen, 2)
}

func TestMemoryGoBounds(t *testing.T) {
	h := NewMemory(loc("/a"))
	require.NoError(t, h.Push(loc("/b")))
	require.NoError(t, h.Push(loc("/c")))

	assert.False(t, h.Go(0))
	assert.False(t, h.Go(1))
	assert.False(t, h.Go(-3))
	assert.True(t, h.Go(-2))
	assert.Equal(t, "/a", h.Href())
	assert.False(t, h.Back())
	assert.True(t, h.Go(2))
	assert.Equal(t, "/c", h.Href())
}

func TestListenersOrderAndReentrancy(t *testing.T) {
	var l listeners
	var order []int

	var unsubscribeSecond func()
	l.add(func(routepath.Location) {
		order = append(order, 1)
		unsubscribeSecond()
	})
	unsubscribeSecond = l.add(func(routepath.Location) { order = append(order, 2) })
	l.add(func(routepath.Location) { order = append(order, 3) })

	l.notify(loc("/"))
	// The snapshot taken before the first handler ran still includes #2.
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Equal(t, 2, l.len())

	order = nil
	l.notify(loc("/"))
	assert.Equal(t, []int{1, 3}, order)
}

var _ History = (*Memory)(nil)
var _ History = (*Persistent)(nil)
var _ History = (*Remote)(nil)
