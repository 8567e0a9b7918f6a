package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vroute/pkg/navigation"
)

// Default tracer name for vroute navigations.
const defaultTracerName = "vroute"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "vroute").
	TracerName string

	// TracerProvider provides the tracer.
	// Default: the global provider (otel.GetTracerProvider).
	TracerProvider trace.TracerProvider

	// IncludeQuery includes the query string of the committed location.
	// Queries may carry user data, so this is disabled by default.
	IncludeQuery bool

	// Filter determines which navigations to trace.
	// If nil, all navigations are traced.
	Filter func(req *navigation.Request) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(req *navigation.Request) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeQuery enables recording the query string.
func WithIncludeQuery(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeQuery = include
	}
}

// WithNavigationFilter sets a filter function for navigations.
func WithNavigationFilter(filter func(req *navigation.Request) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(req *navigation.Request) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OpenTelemetry creates middleware that traces every navigation.
//
// The tracer comes from the global OpenTelemetry tracer provider unless
// WithTracerProvider is given. Configure it in main() before starting the
// router:
//
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) navigation.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if config.TracerProvider != nil {
		config.tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		config.tracer = otel.Tracer(config.TracerName)
	}

	return navigation.MiddlewareFunc(func(ctx context.Context, req *navigation.Request, next navigation.Handler) (navigation.Navigation, error) {
		if config.Filter != nil && !config.Filter(req) {
			return next(ctx, req)
		}

		attrs := []attribute.KeyValue{
			attribute.String("vroute.target", req.Target),
			attribute.String("vroute.trigger", req.Trigger.String()),
		}
		if req.Options.Replace {
			attrs = append(attrs, attribute.Bool("vroute.replace", true))
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(req)...)
		}

		spanCtx, span := config.tracer.Start(ctx, formatSpanName(req),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		nav, err := next(spanCtx, req)

		result := []attribute.KeyValue{
			attribute.Int64("vroute.nav_id", int64(nav.Record.ID)),
			attribute.String("vroute.status", nav.Status.String()),
			attribute.String("vroute.route", routeLabel(nav)),
			attribute.String("vroute.path", nav.Location.Path),
			attribute.String("vroute.history_action", nav.Action.String()),
			attribute.Int("vroute.redirects", len(nav.Redirects)),
		}
		if config.IncludeQuery && nav.Location.RawQuery != "" {
			result = append(result, attribute.String("vroute.query", nav.Location.RawQuery))
		}
		if nav.View != "" {
			result = append(result, attribute.String("vroute.view", nav.View))
		}
		span.SetAttributes(result...)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return nav, err
	})
}

func formatSpanName(req *navigation.Request) string {
	if req.Trigger == navigation.TriggerPop {
		return "vroute.pop"
	}
	return "vroute.navigate"
}
