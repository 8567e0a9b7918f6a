package view

import (
	"context"

	"github.com/vango-dev/vroute/pkg/router"
)

// View is the lifecycle surface of a page.
type View interface {
	// Mount is called when a navigation to the view commits.
	Mount(ctx context.Context, m *router.Match) error

	// Unmount is called when a navigation away from the view commits.
	Unmount()
}

// Loader is implemented by views that load data before a navigation to
// them commits.
type Loader interface {
	Load(ctx context.Context, m *router.Match) error
}

// Updater is implemented by views that stay mounted when a navigation
// commits to the same view with a different location.
// Views without it are unmounted and mounted again.
type Updater interface {
	Update(ctx context.Context, m *router.Match) error
}

// Funcs builds a View from functions. Nil functions do nothing.
type Funcs struct {
	OnMount   func(ctx context.Context, m *router.Match) error
	OnUnmount func()
}

// Mount implements View.
func (f Funcs) Mount(ctx context.Context, m *router.Match) error {
	if f.OnMount == nil {
		return nil
	}
	return f.OnMount(ctx, m)
}

// Unmount implements View.
func (f Funcs) Unmount() {
	if f.OnUnmount != nil {
		f.OnUnmount()
	}
}
