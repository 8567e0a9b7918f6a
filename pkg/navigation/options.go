package navigation

import (
	"log/slog"
)

// DefaultMaxRedirects bounds a redirect chain when no limit is configured.
const DefaultMaxRedirects = 10

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxRedirects bounds the number of redirects one navigation may follow.
// Values below 1 keep the default.
func WithMaxRedirects(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxRedirects = n
		}
	}
}

// WithNotFoundView sets the view reported for unmatched locations.
func WithNotFoundView(view string) Option {
	return func(c *Controller) {
		c.notFoundView = view
	}
}

// WithGuards appends guards, run in order during Guarding.
func WithGuards(guards ...Guard) Option {
	return func(c *Controller) {
		c.guards = append(c.guards, guards...)
	}
}

// WithMiddleware appends navigation middleware, run first to last.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *Controller) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithPhaseObserver registers fn for every phase a navigation enters.
// fn runs on the navigating goroutine and must not block.
func WithPhaseObserver(fn func(Record, Phase)) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, fn)
	}
}

// NavigateOptions configures one navigation.
type NavigateOptions struct {
	// Replace replaces the current history entry instead of pushing.
	Replace bool

	// Query replaces the query of the target.
	Query map[string]string

	// Hash replaces the fragment of the target when HasHash is set.
	Hash    string
	HasHash bool
}

// NavigateOption is a functional option for NavigateTo.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithQuery sets the query parameters of the target.
func WithQuery(params map[string]string) NavigateOption {
	return func(o *NavigateOptions) {
		o.Query = params
	}
}

// WithHash sets the fragment of the target, without the leading "#".
func WithHash(hash string) NavigateOption {
	return func(o *NavigateOptions) {
		o.Hash = hash
		o.HasHash = true
	}
}
