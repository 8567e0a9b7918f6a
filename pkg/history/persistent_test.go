package history

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vroute/pkg/routepath"
)

type savedStack struct {
	entries []routepath.Location
	index   int
}

type fakeStore struct {
	stacks  map[string]savedStack
	saves   int
	loadErr error
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{stacks: make(map[string]savedStack)}
}

func (s *fakeStore) Load(_ context.Context, key string) ([]routepath.Location, int, bool, error) {
	if s.loadErr != nil {
		return nil, 0, false, s.loadErr
	}
	st, ok := s.stacks[key]
	return st.entries, st.index, ok, nil
}

func (s *fakeStore) Save(_ context.Context, key string, entries []routepath.Location, index int) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.stacks[key] = savedStack{entries: entries, index: index}
	return nil
}

func TestPersistentRestoresAcrossReopen(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	h, err := OpenPersistent(ctx, store, "journal", loc("/"), nil)
	require.NoError(t, err)
	require.NoError(t, h.Replace(loc("/write")))
	require.NoError(t, h.Push(loc("/daily")))
	require.NoError(t, h.Push(loc("/monthly?m=2024-02")))
	require.True(t, h.Back())

	reopened, err := OpenPersistent(ctx, store, "journal", loc("/"), nil)
	require.NoError(t, err)
	assert.Equal(t, h.Entries(), reopened.Entries())
	assert.Equal(t, 1, reopened.Index())
	assert.Equal(t, "/daily", reopened.Href())

	require.True(t, reopened.Forward())
	assert.Equal(t, "/monthly?m=2024-02", reopened.Href())
}

func TestPersistentKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	a, err := OpenPersistent(ctx, store, "a", loc("/"), nil)
	require.NoError(t, err)
	require.NoError(t, a.Push(loc("/daily")))

	b, err := OpenPersistent(ctx, store, "b", loc("/monthly"), nil)
	require.NoError(t, err)
	assert.Equal(t, "/monthly", b.Href())
	assert.Equal(t, 1, len(b.Entries()))
}

func TestPersistentSaveFailureKeepsMemoryState(t *testing.T) {
	store := newFakeStore()
	h, err := OpenPersistent(context.Background(), store, "k", loc("/"), nil)
	require.NoError(t, err)

	store.saveErr = errors.New("disk full")
	require.NoError(t, h.Push(loc("/write")))
	assert.Equal(t, "/write", h.Href())
	require.Error(t, h.Err())
	assert.ErrorIs(t, h.Err(), store.saveErr)

	store.saveErr = nil
	require.NoError(t, h.Push(loc("/daily")))
	assert.NoError(t, h.Err())
}

func TestPersistentLoadFailure(t *testing.T) {
	store := newFakeStore()
	store.loadErr = errors.New("corrupt")

	_, err := OpenPersistent(context.Background(), store, "k", loc("/"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.loadErr)
}

func TestPersistentGoSavesBeforeNotify(t *testing.T) {
	store := newFakeStore()
	h, err := OpenPersistent(context.Background(), store, "k", loc("/a"), nil)
	require.NoError(t, err)
	require.NoError(t, h.Push(loc("/b")))

	var savedIndexAtNotify int
	h.OnChange(func(routepath.Location) {
		savedIndexAtNotify = store.stacks["k"].index
	})
	require.True(t, h.Back())
	assert.Equal(t, 0, savedIndexAtNotify)
	assert.False(t, h.Go(5))
}

func TestPersistentRevertSaves(t *testing.T) {
	store := newFakeStore()
	h, err := OpenPersistent(context.Background(), store, "k", loc("/a"), nil)
	require.NoError(t, err)
	require.NoError(t, h.Push(loc("/b")))
	require.True(t, h.Back())
	require.Equal(t, 0, store.stacks["k"].index)

	require.True(t, h.Revert())
	assert.Equal(t, "/b", h.Href())
	assert.Equal(t, 1, store.stacks["k"].index)
	assert.False(t, h.Revert())
}
