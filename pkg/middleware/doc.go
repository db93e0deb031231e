// Package middleware provides production-grade navigation middleware for
// router.Router.
//
// This package includes:
//   - OpenTelemetry tracing middleware
//   - Prometheus metrics middleware
//   - Recovery and logging middleware
//
// # OpenTelemetry Middleware
//
// The OpenTelemetry middleware traces every navigation. Spans are named
// after the matched route and carry the path, the not-found flag and the
// resulting status.
//
//	r := router.New(tree,
//	    router.WithMiddleware(
//	        middleware.OpenTelemetry(),
//	    ),
//	)
//
// Configure with options:
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-app"),
//	    middleware.WithIncludeContext(true),
//	    middleware.WithNavigationFilter(func(nav *router.Navigation) bool {
//	        return nav.Path != "/healthz"
//	    }),
//	)
//
// # Prometheus Metrics
//
// The Prometheus middleware collects:
//   - navtree_navigations_total: Navigations by route and status
//   - navtree_navigation_duration_seconds: Navigation duration histogram
//   - navtree_navigation_errors_total: Failed navigations by error type
//
// NewMetrics additionally exposes gauges the server keeps current: the
// number of routes and the number of open WebSocket sessions.
//
//	r := router.New(tree,
//	    router.WithMiddleware(
//	        middleware.Recover(logger),
//	        middleware.Prometheus(),
//	    ),
//	)
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # Context Propagation
//
// Middleware passes its context down the chain, so controllers and
// renderers receive the navigation span:
//
//	router.ControllerFunc(func(ctx context.Context, page *router.Page) error {
//	    middleware.SpanFromContext(ctx).AddEvent("controller init")
//	    return nil
//	})
package middleware
