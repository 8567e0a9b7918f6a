// Package middleware provides observability middleware for navigations.
//
// Both middlewares implement navigation.Middleware and wrap every
// navigation a controller runs, including the initial one and those
// started by history pop events.
//
// # OpenTelemetry Middleware
//
// The OpenTelemetry middleware opens one span per navigation. The span
// carries the requested target and trigger, and after the navigation the
// record ID, outcome, matched route and committed location. Guards run
// under the span's context, so work they start joins the trace.
//
//	ctrl := navigation.New(reg, h,
//	    navigation.WithMiddleware(
//	        middleware.OpenTelemetry(middleware.WithTracerName("journal")),
//	    ),
//	)
//
// # Prometheus Metrics
//
// The Prometheus middleware collects:
//   - vroute_navigations_total: navigations by trigger and status
//   - vroute_navigation_duration_seconds: navigation duration by route
//   - vroute_navigation_errors_total: failed navigations by error code
//   - vroute_redirects_total: redirects followed
//   - vroute_history_sessions: connected remote history sessions
//
//	ctrl := navigation.New(reg, h,
//	    navigation.WithMiddleware(middleware.Prometheus()),
//	)
//	http.Handle("/metrics", promhttp.Handler())
//
// Route labels use the declared pattern, never the concrete path, so
// label cardinality is bounded by the number of routes.
package middleware
