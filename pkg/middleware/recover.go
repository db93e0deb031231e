package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/vango-dev/navtree/pkg/router"
)

// ErrPanic wraps a panic recovered during a navigation.
var ErrPanic = errors.New("navigation panic")

// Recover creates middleware that turns a panic in a controller, renderer
// or later middleware into an error wrapping ErrPanic. The panic and its
// stack are logged at error level.
func Recover(logger *slog.Logger) router.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return router.MiddlewareFunc(func(ctx context.Context, nav *router.Navigation, next func(context.Context) error) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("navigation panic",
					"path", nav.Path,
					"panic", r,
					"stack", string(debug.Stack()))
				nav.Page = nil
				err = fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()
		return next(ctx)
	})
}

// Logging creates middleware that logs every navigation with its outcome
// and duration. Hits and fallbacks log at debug level, failures at warn.
func Logging(logger *slog.Logger) router.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return router.MiddlewareFunc(func(ctx context.Context, nav *router.Navigation, next func(context.Context) error) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Warn("navigation failed",
				"path", nav.Path,
				"error", err,
				"duration", elapsed)
			return err
		}

		attrs := []any{"path", nav.Path, "duration", elapsed}
		if page := nav.Page; page != nil {
			attrs = append(attrs, "route", page.Route, "status", page.Status)
			if page.NotFound {
				attrs = append(attrs, "notFound", true)
			}
		}
		logger.Debug("navigation", attrs...)
		return nil
	})
}
