package middleware

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/navigation"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vroute").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "vroute",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

type metrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	navigationErrors   *prometheus.CounterVec
	redirectsTotal     prometheus.Counter
	historySessions    prometheus.Gauge
}

// globalMetrics is created by the first call to Prometheus. Later calls
// share it, whatever their options.
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations by trigger and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"trigger", "status"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation duration in seconds, guards included",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		navigationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_errors_total",
			Help:        "Total number of failed navigations by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		redirectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "redirects_total",
			Help:        "Total number of redirects followed by committed navigations",
			ConstLabels: config.ConstLabels,
		}),

		historySessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "history_sessions",
			Help:        "Number of connected remote history sessions",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus creates middleware that collects navigation metrics.
func Prometheus(opts ...MetricsOption) navigation.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return navigation.MiddlewareFunc(func(ctx context.Context, req *navigation.Request, next navigation.Handler) (navigation.Navigation, error) {
		start := time.Now()

		nav, err := next(ctx, req)

		m.navigationDuration.WithLabelValues(routeLabel(nav)).Observe(time.Since(start).Seconds())
		m.navigationsTotal.WithLabelValues(nav.Trigger.String(), nav.Status.String()).Inc()
		if nav.Status.Committed() && len(nav.Redirects) > 0 {
			m.redirectsTotal.Add(float64(len(nav.Redirects)))
		}
		if err != nil {
			m.navigationErrors.WithLabelValues(errorCode(err)).Inc()
		}
		return nav, err
	})
}

// routeLabel names the route a navigation ended on.
func routeLabel(nav navigation.Navigation) string {
	switch {
	case nav.Match != nil:
		return nav.Match.Route.Pattern
	case nav.Status == navigation.StatusNotFound:
		return "not_found"
	default:
		return "none"
	}
}

// errorCode returns a low-cardinality label for err.
func errorCode(err error) string {
	var re *errors.RouteError
	switch {
	case stderrors.As(err, &re) && re.Code != "":
		return re.Code
	case stderrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case stderrors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}

// RecordSessionOpen records a remote history session connecting.
func RecordSessionOpen() {
	if m := current(); m != nil {
		m.historySessions.Inc()
	}
}

// RecordSessionClose records a remote history session disconnecting.
func RecordSessionClose() {
	if m := current(); m != nil {
		m.historySessions.Dec()
	}
}

func current() *metrics {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	return globalMetrics
}
