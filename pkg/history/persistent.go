package history

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/routepath"
)

// Store saves and restores a history stack under a key.
type Store interface {
	// Load returns the saved stack. ok is false when nothing is saved.
	Load(ctx context.Context, key string) (entries []routepath.Location, index int, ok bool, err error)

	// Save replaces the saved stack.
	Save(ctx context.Context, key string, entries []routepath.Location, index int) error
}

// Persistent is a Memory history that writes its stack to a Store after
// every change, so a restarted process resumes where it left off.
//
// The in-memory stack is authoritative: a failed save is logged and
// reported through Err, it never fails the navigation that caused it.
type Persistent struct {
	mem    *Memory
	store  Store
	key    string
	logger *slog.Logger

	// saveMu orders saves so the store never goes back to an older stack.
	saveMu  sync.Mutex
	lastErr error
}

// OpenPersistent restores the stack saved under key, or starts a new one at
// initial when nothing is saved.
func OpenPersistent(ctx context.Context, store Store, key string, initial routepath.Location, logger *slog.Logger) (*Persistent, error) {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Persistent{
		mem:    NewMemory(initial),
		store:  store,
		key:    key,
		logger: logger.With("history_key", key),
	}

	entries, index, ok, err := store.Load(ctx, key)
	if err != nil {
		return nil, errors.New("R021").WithDetailf("load %q", key).Wrap(err)
	}
	if ok && len(entries) > 0 {
		p.mem.restore(entries, index)
		p.logger.Debug("history restored", "entries", len(entries), "index", p.mem.Index())
	}
	return p, nil
}

// Current returns the current location.
func (p *Persistent) Current() routepath.Location { return p.mem.Current() }

// Href returns the current address.
func (p *Persistent) Href() string { return p.mem.Href() }

// Entries returns a copy of the entry stack.
func (p *Persistent) Entries() []routepath.Location { return p.mem.Entries() }

// Index returns the cursor position.
func (p *Persistent) Index() int { return p.mem.Index() }

// OnChange registers fn for Back, Forward and Go.
func (p *Persistent) OnChange(fn func(routepath.Location)) func() {
	return p.mem.OnChange(fn)
}

// Push adds an entry and saves the stack.
func (p *Persistent) Push(loc routepath.Location) error {
	_ = p.mem.Push(loc)
	p.save()
	return nil
}

// Replace overwrites the current entry and saves the stack.
func (p *Persistent) Replace(loc routepath.Location) error {
	_ = p.mem.Replace(loc)
	p.save()
	return nil
}

// Back moves one entry back.
func (p *Persistent) Back() bool { return p.Go(-1) }

// Forward moves one entry forward.
func (p *Persistent) Forward() bool { return p.Go(1) }

// Go moves the cursor, saves, then notifies OnChange handlers.
func (p *Persistent) Go(delta int) bool {
	loc, ok := p.mem.move(delta)
	if !ok {
		return false
	}
	p.save()
	p.mem.listeners.notify(loc)
	return true
}

// Revert undoes the last Back, Forward or Go and saves the stack.
func (p *Persistent) Revert() bool {
	if !p.mem.Revert() {
		return false
	}
	p.save()
	return true
}

// Err returns the error of the most recent failed save, if any.
func (p *Persistent) Err() error {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()
	return p.lastErr
}

func (p *Persistent) save() {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	entries, index := p.mem.snapshot()
	if err := p.store.Save(context.Background(), p.key, entries, index); err != nil {
		p.lastErr = errors.New("R021").WithDetailf("save %q", p.key).Wrap(err)
		p.logger.Warn("history save failed", "error", err)
		return
	}
	p.lastErr = nil
}

var _ Reverter = (*Persistent)(nil)
