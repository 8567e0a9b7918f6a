package view

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vango-dev/vroute/pkg/navigation"
)

// Outlet renders the view of each committed navigation.
type Outlet struct {
	ctx     context.Context
	logger  *slog.Logger
	onError func(view string, err error)

	// renderMu serializes renders. Lifecycle calls run under it but
	// outside mu, so a view may navigate from Mount, Update or Unmount.
	renderMu sync.Mutex

	mu       sync.Mutex
	views    map[string]View
	active   string
	mounted  View
	location string
}

// OutletOption configures an Outlet.
type OutletOption func(*Outlet)

// WithContext sets the context passed to Mount and Update.
// Default: context.Background().
func WithContext(ctx context.Context) OutletOption {
	return func(o *Outlet) {
		o.ctx = ctx
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) OutletOption {
	return func(o *Outlet) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithErrorHandler sets a hook for mount and update errors.
func WithErrorHandler(fn func(view string, err error)) OutletOption {
	return func(o *Outlet) {
		o.onError = fn
	}
}

// NewOutlet creates an empty outlet.
func NewOutlet(opts ...OutletOption) *Outlet {
	o := &Outlet{
		ctx:    context.Background(),
		logger: slog.Default(),
		views:  make(map[string]View),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Register maps a view identifier to v, replacing any previous view.
func (o *Outlet) Register(id string, v View) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.views[id] = v
}

// Lookup returns the view registered under id.
func (o *Outlet) Lookup(id string) (View, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.views[id]
	return v, ok
}

// Active returns the identifier of the mounted view, or "".
func (o *Outlet) Active() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

// Attach renders every navigation ctrl commits. It returns a detach func.
func (o *Outlet) Attach(ctrl *navigation.Controller) (detach func()) {
	return ctrl.OnNavigated(o.Render)
}

// Render mounts the view of nav, unmounting the previous one.
// A navigation without a registered view leaves the outlet empty.
//
// A view may call NavigateTo from Mount, Update or Unmount. The navigation
// it starts is rendered after the current Render returns. Views must not
// call Render or Unmount on their own outlet.
func (o *Outlet) Render(nav navigation.Navigation) {
	o.renderMu.Lock()
	defer o.renderMu.Unlock()

	o.mu.Lock()
	next, ok := o.views[nav.View]
	mounted, active, location := o.mounted, o.active, o.location
	o.mu.Unlock()

	if nav.View != "" && !ok {
		o.report(nav.View, fmt.Errorf("view %q is not registered", nav.View))
	}

	href := nav.Location.String()
	if ok && nav.View == active && mounted != nil {
		if href == location {
			return
		}
		if u, isUpdater := mounted.(Updater); isUpdater {
			o.set(mounted, active, href)
			if err := u.Update(o.ctx, nav.Match); err != nil {
				o.report(nav.View, err)
			}
			return
		}
	}

	if mounted != nil {
		o.logger.Debug("unmounting view", "view", active)
		o.set(nil, "", "")
		mounted.Unmount()
	}
	if !ok {
		return
	}

	o.logger.Debug("mounting view", "view", nav.View, "path", href)
	if err := next.Mount(o.ctx, nav.Match); err != nil {
		o.report(nav.View, err)
		return
	}
	o.set(next, nav.View, href)
}

// Unmount unmounts the active view, if any.
func (o *Outlet) Unmount() {
	o.renderMu.Lock()
	defer o.renderMu.Unlock()

	o.mu.Lock()
	mounted := o.mounted
	o.mounted, o.active, o.location = nil, "", ""
	o.mu.Unlock()

	if mounted != nil {
		mounted.Unmount()
	}
}

func (o *Outlet) set(v View, active, location string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.mounted, o.active, o.location = v, active, location
}

// Guard returns a guard that runs the Loader of the target view.
// A load error rejects the navigation.
func (o *Outlet) Guard() navigation.Guard {
	return func(ctx context.Context, t *navigation.Transition) navigation.Decision {
		v, ok := o.Lookup(t.Match.Route.View)
		if !ok {
			return navigation.Approve()
		}
		loader, ok := v.(Loader)
		if !ok {
			return navigation.Approve()
		}
		if err := loader.Load(ctx, t.Match); err != nil {
			return navigation.Reject(fmt.Errorf("load %s: %w", t.Match.Route.View, err))
		}
		return navigation.Approve()
	}
}

func (o *Outlet) report(view string, err error) {
	o.logger.Error("view error", "view", view, "error", err)
	if o.onError != nil {
		o.onError(view, err)
	}
}

var _ View = Funcs{}
