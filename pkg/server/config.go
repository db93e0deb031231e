package server

import (
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/navtree/pkg/router"
)

// Config holds the server configuration.
type Config struct {
	// Address is the listen address (default ":8080").
	Address string

	// ReadHeaderTimeout, ReadTimeout, WriteTimeout and IdleTimeout are
	// passed to http.Server.
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	// ShutdownTimeout bounds graceful shutdown (default 5s).
	ShutdownTimeout time.Duration

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// PongTimeout is how long a WebSocket may stay silent before it is
	// closed. Pings are sent at 9/10 of it (default 60s).
	PongTimeout time.Duration

	// CheckOrigin is called to validate the WebSocket request origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// ReadOnly rejects route edits.
	ReadOnly bool

	// MetricsPath serves Prometheus metrics when set.
	MetricsPath string

	// MetricsNamespace prefixes metric names (default "navtree").
	MetricsNamespace string

	// Registry registers the server metrics and is gathered at
	// MetricsPath. Default: prometheus.DefaultRegisterer and
	// prometheus.DefaultGatherer.
	Registry interface {
		prometheus.Registerer
		prometheus.Gatherer
	}

	// AssetPrefix and Assets serve static view assets, such as
	// stylesheets and controller scripts, when both are set.
	AssetPrefix string
	Assets      http.Handler

	// Renderer builds page markup for /view and WebSocket navigations.
	Renderer router.Renderer

	// Middleware runs around every navigation the server performs.
	Middleware []router.Middleware

	// Reload rebuilds the tree, usually from the manifest. It backs
	// POST /reload; nil disables the endpoint.
	Reload func() (*router.Tree, error)
}

// DefaultConfig returns a Config with sensible defaults.
// SECURITY: CheckOrigin enforces same-origin by default to prevent CSWSH.
func DefaultConfig() *Config {
	return &Config{
		Address:           ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		PongTimeout:       60 * time.Second,
		CheckOrigin:       SameOriginCheck,
	}
}

// applyDefaults fills in defaults for unset fields.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Address == "" {
		c.Address = defaults.Address
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = defaults.ReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = defaults.WriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = defaults.IdleTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = defaults.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = defaults.WriteBufferSize
	}
	if c.PongTimeout == 0 {
		c.PongTimeout = defaults.PongTimeout
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = defaults.CheckOrigin
	}
}

// SameOriginCheck validates that the WebSocket request origin matches the host.
// This is the secure default for CheckOrigin.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No Origin header (e.g., same-origin request or curl)
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == "" {
		return false
	}
	return originURL.Host == r.Host
}

// AllowOrigins returns a CheckOrigin accepting same-origin requests and
// the listed origins, compared as scheme://host[:port].
func AllowOrigins(origins ...string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if SameOriginCheck(r) {
			return true
		}
		return slices.Contains(origins, r.Header.Get("Origin"))
	}
}
