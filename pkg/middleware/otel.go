package middleware

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/navtree/pkg/router"
)

// Default tracer name.
const defaultTracerName = "navtree"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "navtree").
	TracerName string

	// TracerProvider supplies the tracer. Defaults to the global provider.
	TracerProvider trace.TracerProvider

	// IncludeContext records the captured values as span attributes.
	// May contain user input - disabled by default.
	IncludeContext bool

	// Filter determines which navigations to trace.
	// Return true to trace the navigation, false to skip.
	// If nil, all navigations are traced.
	Filter func(nav *router.Navigation) bool

	// AttributeExtractor extracts custom attributes once the navigation
	// has completed.
	AttributeExtractor func(nav *router.Navigation) []attribute.KeyValue
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

// WithIncludeContext enables recording captured values on spans.
func WithIncludeContext(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeContext = include
	}
}

// WithNavigationFilter sets a filter function for navigations.
func WithNavigationFilter(filter func(nav *router.Navigation) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(nav *router.Navigation) []attribute.KeyValue) OTelOption {
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
// The middleware:
//   - Creates a span per navigation, named after the matched route
//   - Passes the span context down the chain, so controllers and renderers
//     can start child spans from their ctx
//   - Records errors and sets span status
//
// Example:
//
//	r := router.New(tree,
//	    router.WithMiddleware(
//	        middleware.OpenTelemetry(middleware.WithTracerName("my-app")),
//	    ),
//	)
//
// Without WithTracerProvider the global provider is used. Configure it in
// main() with otel.SetTracerProvider before navigating.
func OpenTelemetry(opts ...OTelOption) router.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(config.TracerName)

	return router.MiddlewareFunc(func(ctx context.Context, nav *router.Navigation, next func(context.Context) error) error {
		if config.Filter != nil && !config.Filter(nav) {
			return next(ctx)
		}

		spanCtx, span := tracer.Start(ctx, formatSpanName(nav.Path),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(
				attribute.String("navtree.path", nav.Path),
				attribute.Bool("navtree.history", nav.Options.History),
				attribute.Bool("navtree.replace", nav.Options.Replace),
			),
		)
		defer span.End()

		err := next(spanCtx)

		if page := nav.Page; page != nil {
			if page.Route != "" {
				span.SetName(formatSpanName(page.Route))
			}
			span.SetAttributes(
				attribute.String("navtree.route", page.Route),
				attribute.Bool("navtree.not_found", page.NotFound),
				attribute.Int("navtree.status", page.Status),
			)
			if page.View.JSRef != "" {
				span.SetAttributes(attribute.String("navtree.controller", page.View.JSRef))
			}
			if config.IncludeContext {
				span.SetAttributes(contextAttributes(page.Context)...)
			}
		}
		if config.AttributeExtractor != nil {
			span.SetAttributes(config.AttributeExtractor(nav)...)
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	})
}

// SpanFromContext returns the navigation span carried by ctx. Controllers
// and renderers receive that ctx.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

func formatSpanName(path string) string {
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("navigate %s", path)
}

func contextAttributes(c router.Context) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(c))
	for name, v := range c {
		key := "navtree.capture." + name
		switch v.Kind {
		case router.CaptureSlice:
			attrs = append(attrs, attribute.StringSlice(key, v.Values))
		default:
			attrs = append(attrs, attribute.String(key, v.Value))
		}
	}
	return attrs
}
