package navigation

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/history"
	"github.com/vango-dev/vroute/pkg/router"
	"github.com/vango-dev/vroute/pkg/routepath"
)

// Controller runs navigations. It is safe for concurrent use: navigations
// may be requested from any goroutine and the most recent one wins.
type Controller struct {
	registry atomic.Pointer[router.Registry]
	history  history.History
	logger   *slog.Logger

	maxRedirects int
	notFoundView string
	middleware   []Middleware
	observers    []func(Record, Phase)
	handler      Handler

	guardsMu sync.RWMutex
	guards   []Guard

	// seq is the ID of the most recent navigation.
	seq atomic.Uint64

	mu          sync.Mutex
	cancel      context.CancelFunc
	last        *Navigation
	baseCtx     context.Context
	stopHistory func()

	// commitMu serializes every history mutation.
	commitMu sync.Mutex

	subs   subscribers
	outbox outbox
}

// New creates a controller over reg and h. Call Start to make the initial
// navigation and follow external history changes.
func New(reg *router.Registry, h history.History, opts ...Option) *Controller {
	c := &Controller{
		history:      h,
		logger:       slog.Default(),
		maxRedirects: DefaultMaxRedirects,
	}
	c.registry.Store(reg)
	for _, opt := range opts {
		opt(c)
	}
	c.handler = ComposeMiddleware(c.middleware, c.run)
	return c
}

// Registry returns the registry snapshot new navigations match against.
func (c *Controller) Registry() *router.Registry {
	return c.registry.Load()
}

// SetRegistry swaps the registry. Navigations already matching keep the
// snapshot they started with.
func (c *Controller) SetRegistry(reg *router.Registry) {
	c.registry.Store(reg)
}

// Use appends guards.
func (c *Controller) Use(guards ...Guard) {
	c.guardsMu.Lock()
	defer c.guardsMu.Unlock()
	c.guards = append(c.guards, guards...)
}

// Current returns the current location of the history adapter.
func (c *Controller) Current() routepath.Location {
	return c.history.Current()
}

// CurrentMatch returns the route of the last committed navigation.
// It is nil before the first navigation and after a not-found one.
func (c *Controller) CurrentMatch() *router.Match {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return nil
	}
	return c.last.Match
}

// Last returns the last committed navigation.
func (c *Controller) Last() (Navigation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return Navigation{}, false
	}
	return *c.last, true
}

// OnNavigated registers fn for committed navigations. Handlers run in
// registration order, in commit order, never for aborted, rejected or
// failed navigations.
func (c *Controller) OnNavigated(fn func(Navigation)) (unsubscribe func()) {
	return c.subs.add(fn)
}

// NavigateTo navigates to target: a path starting with "/" (which may carry
// a query and a fragment) or the name of a route whose pattern is filled
// from params.
//
// The returned error is non-nil for an invalid target, an unknown route
// name, a redirect loop, a guard rejection and a history failure. Not-found
// and superseded navigations are not errors: check Navigation.Status.
//
// NavigateTo returns once the navigation is committed. Subscribers have
// seen it by then unless another delivery was in progress, as when
// NavigateTo is called from a subscriber or a view. In that case the
// navigation is delivered, in commit order, by whoever is delivering.
func (c *Controller) NavigateTo(ctx context.Context, target string, params map[string]string, opts ...NavigateOption) (Navigation, error) {
	var options NavigateOptions
	for _, opt := range opts {
		opt(&options)
	}
	return c.handler(ctx, &Request{
		Target:  target,
		Params:  params,
		Options: options,
		Trigger: TriggerUser,
	})
}

// Start resolves the current history location as the initial navigation and
// follows external history changes until Stop. ctx bounds the navigations
// started by external changes.
func (c *Controller) Start(ctx context.Context) (Navigation, error) {
	c.mu.Lock()
	if c.stopHistory != nil {
		c.stopHistory()
	}
	c.baseCtx = ctx
	c.stopHistory = c.history.OnChange(c.handleExternal)
	c.mu.Unlock()

	return c.handler(ctx, &Request{
		Target:  c.history.Current().String(),
		Trigger: TriggerInitial,
	})
}

// Stop stops following history changes and cancels the navigation in
// flight, if any.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopHistory != nil {
		c.stopHistory()
		c.stopHistory = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.baseCtx = nil
}

// handleExternal runs the navigation for a change reported by the history
// adapter. The record ID is taken before it returns, so a later change
// supersedes this one even when the adapter reports changes from a loop
// that cannot wait for the navigation to finish.
func (c *Controller) handleExternal(loc routepath.Location) {
	c.mu.Lock()
	ctx := c.baseCtx
	c.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	req := &Request{Target: loc.String(), Trigger: TriggerPop, id: c.reserve()}
	if a, ok := c.history.(history.Async); ok && a.AsyncChanges() {
		go c.runExternal(ctx, req)
		return
	}
	c.runExternal(ctx, req)
}

func (c *Controller) runExternal(ctx context.Context, req *Request) {
	nav, err := c.handler(ctx, req)
	if err != nil {
		c.logger.Warn("external navigation failed",
			"nav_id", nav.Record.ID,
			"path", req.Target,
			"status", nav.Status.String(),
			"error", err)
	}
}

// reserve takes the next record ID and cancels the navigation in flight.
func (c *Controller) reserve() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.seq.Add(1)
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return id
}

// run is the innermost handler: one pass through the state machine.
func (c *Controller) run(ctx context.Context, req *Request) (Navigation, error) {
	reg := c.registry.Load()
	nav := Navigation{Trigger: req.Trigger, Phase: PhaseRequested}

	to, err := c.resolve(reg, req)
	if err != nil {
		nav.Status = StatusFailed
		nav.Phase = PhaseAborted
		return nav, err
	}
	nav.Location = to

	navCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if req.id != 0 {
		nav.Record.ID = req.id
	} else {
		nav.Record.ID = c.seq.Add(1)
	}
	if !c.superseded(nav.Record.ID) {
		if c.cancel != nil {
			c.cancel()
		}
		c.cancel = cancel
	}
	if c.last != nil {
		from := c.last.Location
		nav.Record.From = &from
	}
	c.mu.Unlock()

	nav.Record.To = to
	c.enter(nav.Record, PhaseRequested)

	loc := to
	visited := make(map[string]bool)
	var chain []string
	var match *router.Match

resolve:
	for {
		if c.superseded(nav.Record.ID) {
			return c.abort(ctx, nav)
		}
		c.enter(nav.Record, PhaseMatching)

		m, ok := reg.MatchLocation(loc)
		if !ok {
			match = nil
			break resolve
		}

		chain = append(chain, m.Route.Pattern)
		if visited[m.Route.Pattern] {
			nav.Location = loc
			return c.fail(nav, newRedirectLoopError(chain))
		}
		visited[m.Route.Pattern] = true

		if m.Route.IsRedirect() {
			if c.superseded(nav.Record.ID) {
				return c.abort(ctx, nav)
			}
			c.enter(nav.Record, PhaseRedirecting)

			next, err := redirectLocation(m, loc)
			if err != nil {
				nav.Location = loc
				return c.fail(nav, newNavigationError(m.Route.RedirectTo, errors.FromError(err, "R007")))
			}
			if err := c.follow(&nav, loc, chain); err != nil {
				return c.fail(nav, err)
			}
			loc = next
			continue
		}

		if c.superseded(nav.Record.ID) {
			return c.abort(ctx, nav)
		}
		c.enter(nav.Record, PhaseGuarding)

		decision := c.runGuards(navCtx, nav.Record.ID, &Transition{
			Record:    nav.Record,
			Trigger:   req.Trigger,
			To:        loc,
			Match:     m,
			Redirects: len(nav.Redirects),
		})
		if c.superseded(nav.Record.ID) || ctx.Err() != nil {
			return c.abort(ctx, nav)
		}

		switch {
		case decision.IsRedirect():
			next, err := routepath.ParseLocation(decision.Target())
			if err != nil {
				nav.Location = loc
				return c.fail(nav, newNavigationError(decision.Target(), errors.FromError(err, "R007")))
			}
			if err := c.follow(&nav, loc, chain); err != nil {
				return c.fail(nav, err)
			}
			loc = next
			continue

		case decision.IsReject():
			nav.Location = loc
			return c.reject(nav, decision)
		}

		match = m
		break resolve
	}

	return c.commit(ctx, nav, req, loc, match)
}

// resolve turns a request into the requested location.
func (c *Controller) resolve(reg *router.Registry, req *Request) (routepath.Location, error) {
	var loc routepath.Location
	if strings.HasPrefix(req.Target, "/") {
		parsed, err := routepath.ParseLocation(req.Target)
		if err != nil {
			return routepath.Location{}, newNavigationError(req.Target,
				errors.New("R007").WithDetailf("%q", req.Target).Wrap(err))
		}
		loc = parsed
	} else {
		path, ok, err := reg.PathFor(req.Target, req.Params)
		if !ok {
			return routepath.Location{}, newNavigationError(req.Target,
				errors.New("R012").WithDetailf("no route named %q", req.Target))
		}
		if err != nil {
			return routepath.Location{}, newNavigationError(req.Target, errors.FromError(err, "R006"))
		}
		loc = routepath.Location{Path: path}
	}

	if req.Options.Query != nil {
		loc = loc.WithQuery(req.Options.Query)
	}
	if req.Options.HasHash {
		loc.Hash = req.Options.Hash
	}
	return loc, nil
}

// redirectLocation fills the redirect target of m. The query and fragment of
// from carry over unless the target declares its own.
func redirectLocation(m *router.Match, from routepath.Location) (routepath.Location, error) {
	target, err := routepath.ParseLocation(m.Route.RedirectTo)
	if err != nil {
		return routepath.Location{}, err
	}
	path, err := router.BuildPath(target.Path, m.Params)
	if err != nil {
		return routepath.Location{}, err
	}

	next := routepath.Location{Path: path, RawQuery: from.RawQuery, Hash: from.Hash}
	if strings.ContainsAny(m.Route.RedirectTo, "?#") {
		next.RawQuery = target.RawQuery
		next.Hash = target.Hash
	}
	return next, nil
}

// follow records a redirect away from loc and enforces the redirect limit.
func (c *Controller) follow(nav *Navigation, from routepath.Location, chain []string) error {
	nav.Redirects = append(nav.Redirects, from)
	if len(nav.Redirects) > c.maxRedirects {
		nav.Location = from
		return newTooManyRedirectsError(chain, c.maxRedirects)
	}
	return nil
}

func (c *Controller) runGuards(ctx context.Context, id uint64, t *Transition) Decision {
	c.guardsMu.RLock()
	guards := make([]Guard, len(c.guards))
	copy(guards, c.guards)
	c.guardsMu.RUnlock()

	for _, guard := range guards {
		if c.superseded(id) || ctx.Err() != nil {
			return Approve()
		}
		if d := guard(ctx, t); !d.IsApprove() {
			return d
		}
	}
	return Approve()
}

func (c *Controller) commit(ctx context.Context, nav Navigation, req *Request, loc routepath.Location, match *router.Match) (Navigation, error) {
	c.commitMu.Lock()
	if c.superseded(nav.Record.ID) {
		c.commitMu.Unlock()
		return c.abort(ctx, nav)
	}
	c.enter(nav.Record, PhaseCommitting)

	action := commitAction(req.Trigger, req.Options, nav.Redirected())
	var err error
	switch action {
	case ActionPush:
		err = c.history.Push(loc)
	case ActionReplace:
		err = c.history.Replace(loc)
	}
	if err != nil {
		c.commitMu.Unlock()
		nav.Location = loc
		return c.fail(nav, newNavigationError(loc.String(), errors.FromError(err, "R020")))
	}

	nav.Location = loc
	nav.Action = action
	nav.Match = match
	nav.Phase = PhaseCompleted
	if match != nil {
		nav.Status = StatusCompleted
		nav.View = match.Route.View
	} else {
		nav.Status = StatusNotFound
		nav.View = c.notFoundView
	}

	committed := nav
	c.mu.Lock()
	c.last = &committed
	c.mu.Unlock()

	c.outbox.put(nav)
	c.commitMu.Unlock()

	c.enter(nav.Record, PhaseCompleted)
	c.logger.Debug("navigation completed",
		"nav_id", nav.Record.ID,
		"path", loc.String(),
		"status", nav.Status.String(),
		"action", action.String())

	c.outbox.drain(c.subs.notify)
	return nav, nil
}

// commitAction decides how a navigation is written to history.
func commitAction(trigger Trigger, opts NavigateOptions, redirected bool) HistoryAction {
	switch {
	case trigger == TriggerPop:
		if redirected {
			return ActionReplace
		}
		return ActionNone
	case trigger == TriggerInitial, redirected, opts.Replace:
		return ActionReplace
	default:
		return ActionPush
	}
}

// reject ends a navigation a guard rejected. A rejected pop puts the prior
// location back into the address: the adapter's cursor moves back when it
// can revert, otherwise the prior location replaces the popped-to entry.
func (c *Controller) reject(nav Navigation, d Decision) (Navigation, error) {
	nav.Status = StatusRejected
	nav.Phase = PhaseAborted
	c.enter(nav.Record, PhaseAborted)

	if nav.Trigger == TriggerPop {
		c.commitMu.Lock()
		if !c.superseded(nav.Record.ID) {
			c.restore(&nav)
		}
		c.commitMu.Unlock()
	}

	c.logger.Debug("navigation rejected", "nav_id", nav.Record.ID, "path", nav.Location.String())

	re := errors.New("R011").WithDetail(nav.Location.String())
	if d.Err() != nil {
		re = re.Wrap(d.Err())
	}
	return nav, newNavigationError(nav.Record.To.String(), re)
}

// restore undoes the history change behind a rejected pop.
// The caller holds commitMu.
func (c *Controller) restore(nav *Navigation) {
	if r, ok := c.history.(history.Reverter); ok && r.Revert() {
		c.logger.Debug("history reverted", "nav_id", nav.Record.ID, "path", c.history.Current().String())
		return
	}
	if nav.Record.From == nil {
		return
	}
	prior := *nav.Record.From
	if err := c.history.Replace(prior); err != nil {
		c.logger.Warn("history resync failed", "nav_id", nav.Record.ID, "path", prior.String(), "error", err)
		return
	}
	nav.Action = ActionReplace
}

// abort ends a superseded navigation without a trace. A navigation whose
// caller context ended but that was not superseded returns the context error.
func (c *Controller) abort(ctx context.Context, nav Navigation) (Navigation, error) {
	nav.Status = StatusAborted
	nav.Phase = PhaseAborted
	c.enter(nav.Record, PhaseAborted)

	if !c.superseded(nav.Record.ID) {
		if err := ctx.Err(); err != nil {
			c.logger.Debug("navigation cancelled", "nav_id", nav.Record.ID, "error", err)
			return nav, err
		}
	}
	c.logger.Debug("navigation superseded", "nav_id", nav.Record.ID, "latest", c.seq.Load())
	return nav, nil
}

func (c *Controller) fail(nav Navigation, err error) (Navigation, error) {
	nav.Status = StatusFailed
	nav.Phase = PhaseAborted
	c.enter(nav.Record, PhaseAborted)
	c.logger.Debug("navigation failed", "nav_id", nav.Record.ID, "path", nav.Location.String(), "error", err)
	return nav, err
}

func (c *Controller) superseded(id uint64) bool {
	return c.seq.Load() != id
}

func (c *Controller) enter(rec Record, phase Phase) {
	c.logger.Debug("navigation phase", "nav_id", rec.ID, "phase", phase.String(), "path", rec.To.String())
	for _, fn := range c.observers {
		fn(rec, phase)
	}
}
