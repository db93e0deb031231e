package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Resolver turns a path into a Match. *Tree is the usual implementation.
type Resolver interface {
	Resolve(path string) (*Match, error)
}

// Controller drives a view once it has been resolved.
type Controller interface {
	Init(ctx context.Context, page *Page) error
}

// ControllerFunc adapts a function to the Controller interface.
type ControllerFunc func(ctx context.Context, page *Page) error

// Init implements Controller.
func (f ControllerFunc) Init(ctx context.Context, page *Page) error {
	return f(ctx, page)
}

// ControllerLoader finds the controller named by a view's JSRef.
type ControllerLoader interface {
	Load(ctx context.Context, ref string) (Controller, error)
}

// ErrControllerNotFound is returned by Controllers for an unregistered ref.
var ErrControllerNotFound = errors.New("controller not found")

// Controllers is a ControllerLoader backed by a map.
type Controllers map[string]Controller

// Load implements ControllerLoader.
func (c Controllers) Load(_ context.Context, ref string) (Controller, error) {
	ctrl, ok := c[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrControllerNotFound, ref)
	}
	return ctrl, nil
}

// Renderer presents a page, for example by fetching and writing its assets.
type Renderer interface {
	Render(ctx context.Context, page *Page) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, page *Page) error

// Render implements Renderer.
func (f RendererFunc) Render(ctx context.Context, page *Page) error {
	return f(ctx, page)
}

// Page is the outcome of a navigation.
type Page struct {
	// Path is the path that was navigated to.
	Path string `json:"path"`

	// Route is the matched pattern; empty for a not-found page.
	Route string `json:"route,omitempty"`

	View    View    `json:"view"`
	Context Context `json:"context"`

	// NotFound is set when View is the not-found fallback.
	NotFound bool `json:"notFound,omitempty"`

	// Status is 200 for a match and the NavigationError status otherwise.
	Status int `json:"status"`

	// State is the history state attached by WithState.
	State any `json:"state,omitempty"`

	// HTML is the markup produced by the Renderer, if it sets one.
	HTML string `json:"html,omitempty"`

	// Controller is the loaded controller, if the view names one.
	Controller Controller `json:"-"`
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithLoader sets the loader used to find controllers.
func WithLoader(loader ControllerLoader) Option {
	return func(r *Router) {
		r.loader = loader
	}
}

// WithRenderer sets the renderer called for every successful navigation.
func WithRenderer(renderer Renderer) Option {
	return func(r *Router) {
		r.renderer = renderer
	}
}

// WithMiddleware appends middleware run around every navigation.
func WithMiddleware(mw ...Middleware) Option {
	return func(r *Router) {
		r.middleware = append(r.middleware, mw...)
	}
}

// Router navigates between the views of a Resolver, loading controllers,
// rendering and keeping a history.
//
// A Router holds per-client state and is not safe for concurrent use.
type Router struct {
	resolver   Resolver
	loader     ControllerLoader
	renderer   Renderer
	middleware []Middleware
	logger     *slog.Logger
	history    history
}

// New creates a router over resolver.
func New(resolver Resolver, opts ...Option) *Router {
	r := &Router{
		resolver: resolver,
		history:  history{index: -1},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("component", "router")
	return r
}

// Use appends middleware.
func (r *Router) Use(mw ...Middleware) {
	r.middleware = append(r.middleware, mw...)
}

// Navigate resolves path and builds its page.
//
// A miss carrying a fallback view yields a page with NotFound set; a miss
// without one is returned as the *NavigationError. Any other error aborts
// the navigation unchanged.
func (r *Router) Navigate(ctx context.Context, path string, opts ...NavigateOption) (*Page, error) {
	options := NavigateOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	req := &NavigationRequest{Path: path, Options: options}
	target, err := req.BuildURL()
	if err != nil {
		return nil, err
	}

	page, err := r.navigate(ctx, target, options)
	if err != nil {
		return nil, err
	}

	switch {
	case options.Replace:
		r.history.replace(HistoryEntry{Path: target, State: options.State})
	case options.History:
		r.history.push(HistoryEntry{Path: target, State: options.State})
	}
	return page, nil
}

// Back navigates to the previous history entry.
func (r *Router) Back(ctx context.Context) (*Page, error) {
	return r.step(ctx, -1)
}

// Forward navigates to the next history entry.
func (r *Router) Forward(ctx context.Context) (*Page, error) {
	return r.step(ctx, 1)
}

func (r *Router) step(ctx context.Context, delta int) (*Page, error) {
	entry, ok := r.history.at(r.history.index + delta)
	if !ok {
		return nil, ErrNoHistory
	}
	page, err := r.navigate(ctx, entry.Path, NavigateOptions{State: entry.State})
	if err != nil {
		return nil, err
	}
	r.history.index += delta
	return page, nil
}

// Current returns the current history entry.
func (r *Router) Current() (HistoryEntry, bool) {
	return r.history.at(r.history.index)
}

// History returns a copy of the history entries, oldest first, and the
// index of the current one (-1 when empty).
func (r *Router) History() ([]HistoryEntry, int) {
	entries := make([]HistoryEntry, len(r.history.entries))
	copy(entries, r.history.entries)
	return entries, r.history.index
}

func (r *Router) navigate(ctx context.Context, path string, options NavigateOptions) (*Page, error) {
	nav := &Navigation{Path: path, Options: options}
	err := ComposeMiddleware(ctx, r.middleware, nav, func(ctx context.Context) error {
		page, err := r.load(ctx, path)
		if err != nil {
			return err
		}
		page.State = options.State
		nav.Page = page
		return nil
	})
	if err != nil {
		return nil, err
	}
	if nav.Page == nil {
		return nil, fmt.Errorf("router: navigate %q: middleware did not produce a page", path)
	}
	return nav.Page, nil
}

func (r *Router) load(ctx context.Context, path string) (*Page, error) {
	var page *Page

	m, err := r.resolver.Resolve(path)
	if err != nil {
		navErr, ok := AsNavigationError(err)
		if !ok {
			return nil, err
		}
		r.logger.Debug("navigation miss", "path", path, "code", navErr.Code)
		if navErr.Fallback == nil {
			return nil, err
		}
		page = &Page{
			Path:     path,
			View:     *navErr.Fallback,
			Context:  Context{},
			NotFound: true,
			Status:   navErr.Status,
		}
	} else {
		page = &Page{
			Path:    path,
			Route:   m.Route,
			View:    m.View,
			Context: m.Context,
			Status:  http.StatusOK,
		}
	}

	if r.loader != nil && page.View.JSRef != "" {
		ctrl, err := r.loader.Load(ctx, page.View.JSRef)
		if err != nil {
			r.logger.Error("controller load failed", "path", path, "ref", page.View.JSRef, "error", err)
			return nil, fmt.Errorf("router: load controller %q: %w", page.View.JSRef, err)
		}
		if err := ctrl.Init(ctx, page); err != nil {
			return nil, fmt.Errorf("router: init controller %q: %w", page.View.JSRef, err)
		}
		page.Controller = ctrl
	}

	if r.renderer != nil {
		if err := r.renderer.Render(ctx, page); err != nil {
			return nil, fmt.Errorf("router: render %q: %w", path, err)
		}
	}
	return page, nil
}
