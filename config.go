package vroute

import (
	"log/slog"

	"github.com/vango-dev/vroute/internal/config"
	"github.com/vango-dev/vroute/pkg/navigation"
	"github.com/vango-dev/vroute/pkg/view"
)

// Config is the router configuration.
type Config struct {
	// Routes are the route declarations, in registration order.
	Routes []Definition

	// NotFoundView is the view reported for locations no route matches.
	NotFoundView string

	// MaxRedirects bounds the redirects followed by one navigation.
	// Default: 10.
	MaxRedirects int

	// Guards run before every commit, in order. The outlet's loader
	// guard runs after them.
	Guards []Guard

	// Middleware wraps every navigation, outermost first.
	Middleware []navigation.Middleware

	// Logger is the structured logger for the router.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// ConfigFromFile converts a loaded configuration file. When the file
// declares no routes, the journal routes are used.
func ConfigFromFile(fc *config.Config, logger *slog.Logger) Config {
	routes := fc.Routes
	if len(routes) == 0 {
		routes = JournalRoutes()
	}
	return Config{
		Routes:       routes,
		NotFoundView: fc.NotFoundView,
		MaxRedirects: fc.MaxRedirects,
		Logger:       logger,
	}
}

// Option configures CreateRouter.
type Option func(*settings)

type settings struct {
	views      map[string]view.View
	outletOpts []view.OutletOption
	navOpts    []navigation.Option
}

// WithView registers the view rendered for routes declaring id.
func WithView(id string, v view.View) Option {
	return func(s *settings) {
		s.views[id] = v
	}
}

// WithOutletOptions passes options to the router's outlet.
func WithOutletOptions(opts ...view.OutletOption) Option {
	return func(s *settings) {
		s.outletOpts = append(s.outletOpts, opts...)
	}
}

// WithControllerOptions passes options to the navigation controller.
// They are applied after the options derived from Config.
func WithControllerOptions(opts ...navigation.Option) Option {
	return func(s *settings) {
		s.navOpts = append(s.navOpts, opts...)
	}
}
