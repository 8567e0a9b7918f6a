package vroute

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/history"
	"github.com/vango-dev/vroute/pkg/navigation"
	"github.com/vango-dev/vroute/pkg/routepath"
	"github.com/vango-dev/vroute/pkg/router"
	"github.com/vango-dev/vroute/pkg/view"
)

// Router drives one history through a route registry and renders the
// committed views into its outlet.
type Router struct {
	ctrl    *navigation.Controller
	outlet  *view.Outlet
	history history.History
	logger  *slog.Logger

	mu     sync.Mutex
	detach func()
}

// CreateRouter validates cfg, builds the registry and returns a router
// bound to h. The router does nothing until Start.
func CreateRouter(cfg Config, h history.History, opts ...Option) (*Router, error) {
	if h == nil {
		return nil, errors.New("R032").WithDetail("a history adapter is required")
	}
	if len(cfg.Routes) == 0 {
		return nil, errors.New("R032").
			WithDetail("no routes declared").
			WithSuggestion("Pass vroute.JournalRoutes() or declare routes in vroute.json")
	}

	reg, err := router.NewRegistry(cfg.Routes...)
	if err != nil {
		return nil, err
	}

	s := &settings{views: make(map[string]view.View)}
	for _, opt := range opts {
		opt(s)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	outlet := view.NewOutlet(append([]view.OutletOption{view.WithLogger(logger)}, s.outletOpts...)...)
	for id, v := range s.views {
		outlet.Register(id, v)
	}

	maxRedirects := cfg.MaxRedirects
	if maxRedirects == 0 {
		maxRedirects = navigation.DefaultMaxRedirects
	}
	guards := make([]navigation.Guard, 0, len(cfg.Guards)+1)
	guards = append(guards, cfg.Guards...)
	guards = append(guards, outlet.Guard())

	navOpts := []navigation.Option{
		navigation.WithLogger(logger),
		navigation.WithMaxRedirects(maxRedirects),
		navigation.WithNotFoundView(cfg.NotFoundView),
		navigation.WithGuards(guards...),
		navigation.WithMiddleware(cfg.Middleware...),
	}

	return &Router{
		ctrl:    navigation.New(reg, h, append(navOpts, s.navOpts...)...),
		outlet:  outlet,
		history: h,
		logger:  logger,
	}, nil
}

// Start attaches the outlet, subscribes to history changes and resolves
// the history's current location as the initial navigation.
func (r *Router) Start(ctx context.Context) (Navigation, error) {
	r.mu.Lock()
	if r.detach == nil {
		r.detach = r.outlet.Attach(r.ctrl)
	}
	r.mu.Unlock()
	return r.ctrl.Start(ctx)
}

// Stop unsubscribes from history changes and unmounts the active view.
func (r *Router) Stop() {
	r.ctrl.Stop()

	r.mu.Lock()
	detach := r.detach
	r.detach = nil
	r.mu.Unlock()

	if detach != nil {
		detach()
	}
	r.outlet.Unmount()
}

// NavigateTo navigates to a path ("/daily?d=1") or a route name ("daily")
// filled with params.
func (r *Router) NavigateTo(ctx context.Context, target string, params map[string]string, opts ...navigation.NavigateOption) (Navigation, error) {
	return r.ctrl.NavigateTo(ctx, target, params, opts...)
}

// Current returns the committed location.
func (r *Router) Current() routepath.Location {
	return r.ctrl.Current()
}

// CurrentMatch returns the match of the last committed navigation, or nil.
func (r *Router) CurrentMatch() *router.Match {
	return r.ctrl.CurrentMatch()
}

// OnNavigated subscribes fn to committed navigations.
func (r *Router) OnNavigated(fn func(Navigation)) (unsubscribe func()) {
	return r.ctrl.OnNavigated(fn)
}

// Registry returns the current route registry snapshot.
func (r *Router) Registry() *router.Registry {
	return r.ctrl.Registry()
}

// AddRoutes registers defs after the existing routes. Navigations in
// flight keep the registry they started with.
func (r *Router) AddRoutes(defs ...Definition) error {
	reg, err := r.ctrl.Registry().With(defs...)
	if err != nil {
		return err
	}
	r.ctrl.SetRegistry(reg)
	return nil
}

// SetRoutes replaces the route table. Navigations in flight keep the
// registry they started with; an invalid table leaves the current one.
func (r *Router) SetRoutes(defs ...Definition) error {
	reg, err := router.NewRegistry(defs...)
	if err != nil {
		return err
	}
	r.ctrl.SetRegistry(reg)
	return nil
}

// Use appends guards. They run after the outlet's loader guard.
func (r *Router) Use(guards ...Guard) {
	r.ctrl.Use(guards...)
}

// Outlet returns the outlet rendering committed views.
func (r *Router) Outlet() *view.Outlet {
	return r.outlet
}

// History returns the history adapter.
func (r *Router) History() history.History {
	return r.history
}

// Controller returns the underlying navigation controller.
func (r *Router) Controller() *navigation.Controller {
	return r.ctrl
}
