package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/navtree/pkg/middleware"
	"github.com/vango-dev/navtree/pkg/router"
)

// Server exposes a route tree over HTTP: resolution and rendering for
// clients, route editing for tooling, and a WebSocket endpoint where each
// connection drives its own router with history.
type Server struct {
	// mu guards tree. Navigations hold the read lock only while resolving.
	mu   sync.RWMutex
	tree *router.Tree

	config   *Config
	metrics  *middleware.Metrics
	gatherer prometheus.Gatherer
	navMW    []router.Middleware
	upgrader websocket.Upgrader
	handler  http.Handler

	connsMu sync.Mutex
	conns   map[*websocket.Conn]struct{}

	httpServer *http.Server
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a server for tree. A nil config uses DefaultConfig. The
// server keeps its own copy of config.
func New(tree *router.Tree, config *Config, opts ...Option) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	c := *config
	config = &c
	config.applyDefaults()

	s := &Server{
		tree:   tree,
		config: config,
		conns:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "server")

	if config.MetricsPath != "" {
		var registerer prometheus.Registerer = prometheus.DefaultRegisterer
		s.gatherer = prometheus.DefaultGatherer
		if config.Registry != nil {
			registerer = config.Registry
			s.gatherer = config.Registry
		}
		metricsOpts := []middleware.MetricsOption{middleware.WithRegistry(registerer)}
		if config.MetricsNamespace != "" {
			metricsOpts = append(metricsOpts, middleware.WithNamespace(config.MetricsNamespace))
		}
		s.metrics = middleware.NewMetrics(metricsOpts...)
		s.metrics.SetRoutes(tree.Len())
		s.navMW = append(s.navMW, s.metrics.Middleware())
	}
	s.navMW = append(s.navMW, config.Middleware...)

	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/resolve", s.handleResolve)
	if s.config.Renderer != nil {
		r.Get("/view", s.handleView)
		r.Get("/view/*", s.handleView)
	}

	r.Route("/routes", func(r chi.Router) {
		r.Get("/", s.handleListRoutes)
		if !s.config.ReadOnly {
			r.Post("/", s.handleAppendRoute)
			r.Put("/", s.handleUpdateView)
			r.Delete("/", s.handleRemoveRoute)
		}
	})
	if s.config.Reload != nil && !s.config.ReadOnly {
		r.Post("/reload", s.handleReload)
	}

	r.Get("/ws", s.HandleWebSocket)

	if s.metrics != nil {
		r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	if s.config.Assets != nil && s.config.AssetPrefix != "" {
		prefix := s.config.AssetPrefix
		r.Handle(prefix+"*", http.StripPrefix(prefix, s.config.Assets))
	}
	return r
}

// requestLogger logs each HTTP request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"requestId", chimw.GetReqID(r.Context()))
	})
}

// Handler returns the server's HTTP handler, for mounting in another
// router or serving with httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Resolve implements router.Resolver over the current tree.
func (s *Server) Resolve(path string) (*router.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Resolve(path)
}

// SetTree replaces the served tree.
func (s *Server) SetTree(tree *router.Tree) {
	s.mu.Lock()
	s.tree = tree
	n := tree.Len()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SetRoutes(n)
	}
}

// withTree runs fn with exclusive access to the tree.
func (s *Server) withTree(fn func(tree *router.Tree) error) error {
	s.mu.Lock()
	err := fn(s.tree)
	n := s.tree.Len()
	s.mu.Unlock()

	if err == nil && s.metrics != nil {
		s.metrics.SetRoutes(n)
	}
	return err
}

// readTree runs fn with shared access to the tree.
func (s *Server) readTree(fn func(tree *router.Tree)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.tree)
}

// NewRouter creates a router over the server's tree with its renderer
// and navigation middleware.
func (s *Server) NewRouter(render bool) *router.Router {
	opts := []router.Option{
		router.WithLogger(s.logger),
		router.WithMiddleware(s.navMW...),
	}
	if render && s.config.Renderer != nil {
		opts = append(opts, router.WithRenderer(s.config.Renderer))
	}
	return router.New(s, opts...)
}

// Run listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Serve serves on l until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", l.Addr().String())
		errCh <- s.httpServer.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes open WebSocket sessions and gracefully shuts down the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.closeConns()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}
