package middleware

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/navtree/pkg/router"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "navtree").
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
		Namespace: "navtree",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors for navigations and for the
// live connections of a server.
type Metrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	navigationErrors   *prometheus.CounterVec
	routes             prometheus.Gauge
	activeConnections  prometheus.Gauge
	wsErrors           *prometheus.CounterVec
}

// Collectors are registered once per registry; later calls with the same
// registry share them.
var (
	metricsByRegistry   = make(map[prometheus.Registerer]*Metrics)
	metricsByRegistryMu sync.Mutex
)

// NewMetrics returns the metrics registered with the configured registry,
// creating them on first use.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	metricsByRegistryMu.Lock()
	defer metricsByRegistryMu.Unlock()

	if m, ok := metricsByRegistry[config.Registry]; ok {
		return m
	}
	m := initMetrics(config)
	metricsByRegistry[config.Registry] = m
	return m
}

func initMetrics(config MetricsConfig) *Metrics {
	factory := promauto.With(config.Registry)

	return &Metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations by route and status",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "status"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		navigationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_errors_total",
			Help:        "Total number of failed navigations by error type",
			ConstLabels: config.ConstLabels,
		}, []string{"error_type"}),

		routes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "routes",
			Help:        "Number of segments in the route tree",
			ConstLabels: config.ConstLabels,
		}),

		activeConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_connections",
			Help:        "Number of open WebSocket navigation sessions",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Prometheus creates middleware that collects Prometheus metrics for
// navigations.
//
// Metrics collected:
//   - navtree_navigations_total: Counter of navigations by route and status
//   - navtree_navigation_duration_seconds: Histogram of navigation duration by route
//   - navtree_navigation_errors_total: Counter of failed navigations by error type
//
// The route label is the matched pattern, "not_found" for a fallback page
// and "unmatched" for a failed navigation, which keeps cardinality bounded
// by the size of the tree.
//
// Example:
//
//	r := router.New(tree,
//	    router.WithMiddleware(
//	        middleware.Prometheus(middleware.WithNamespace("myapp")),
//	    ),
//	)
//
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) router.Middleware {
	return NewMetrics(opts...).Middleware()
}

// Middleware returns navigation middleware recording into m.
func (m *Metrics) Middleware() router.Middleware {
	return router.MiddlewareFunc(func(ctx context.Context, nav *router.Navigation, next func(context.Context) error) error {
		start := time.Now()

		err := next(ctx)

		route := routeLabel(nav)
		m.navigationDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())

		status := "error"
		if err != nil {
			m.navigationErrors.WithLabelValues(categorizeError(err)).Inc()
		} else if nav.Page != nil {
			status = strconv.Itoa(nav.Page.Status)
		}
		m.navigationsTotal.WithLabelValues(route, status).Inc()

		return err
	})
}

func routeLabel(nav *router.Navigation) string {
	switch {
	case nav.Page == nil:
		return "unmatched"
	case nav.Page.NotFound:
		return "not_found"
	case nav.Page.Route == "":
		return "/"
	default:
		return nav.Page.Route
	}
}

// categorizeError returns a category for the error type.
// This prevents high-cardinality labels from error messages.
func categorizeError(err error) string {
	switch {
	case router.IsNotFound(err):
		return "not_found"
	case errors.Is(err, router.ErrNoHistory):
		return "no_history"
	case errors.Is(err, router.ErrControllerNotFound):
		return "controller"
	case errors.Is(err, router.ErrUnknownNode), errors.Is(err, router.ErrIllegalOperation):
		return "tree"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrPanic):
		return "panic"
	default:
		return "internal"
	}
}

// SetRoutes records the number of segments in the served tree.
func (m *Metrics) SetRoutes(n int) {
	m.routes.Set(float64(n))
}

// ConnectionOpened records a new WebSocket session.
func (m *Metrics) ConnectionOpened() {
	m.activeConnections.Inc()
}

// ConnectionClosed records the end of a WebSocket session.
func (m *Metrics) ConnectionClosed() {
	m.activeConnections.Dec()
}

// WebSocketError records a WebSocket error.
func (m *Metrics) WebSocketError(errorType string) {
	m.wsErrors.WithLabelValues(errorType).Inc()
}
