package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/navtree/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "navtree.json"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultManifest is the default manifest path.
	DefaultManifest = "routes.hcl"

	// DefaultAssetsDir is the default directory of view assets.
	DefaultAssetsDir = "views"

	// DefaultAssetsPrefix is the default URL prefix of stylesheets and scripts.
	DefaultAssetsPrefix = "/assets/"

	// DefaultMetricsPath is the default path of the Prometheus endpoint.
	DefaultMetricsPath = "/metrics"
)

// Config represents the complete navtree.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Manifest is the manifest file or directory, relative to the config file.
	Manifest string `json:"manifest"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server"`

	// Assets contains view asset configuration.
	Assets AssetsConfig `json:"assets"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing"`

	// Log contains logging configuration.
	Log LogConfig `json:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`

	// ReadTimeout bounds reading a request, as a Go duration ("10s").
	ReadTimeout string `json:"readTimeout,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout string `json:"shutdownTimeout,omitempty"`

	// AllowedOrigins lists the origins allowed to open a WebSocket.
	// Empty allows same-origin requests only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`

	// ReadOnly disables the route editing endpoints.
	ReadOnly bool `json:"readOnly,omitempty"`
}

// AssetsConfig contains view asset configuration.
type AssetsConfig struct {
	// Dir is the local directory of assets, relative to the config file.
	// Ignored when S3 is set.
	Dir string `json:"dir,omitempty"`

	// Prefix is the public URL prefix of stylesheets and scripts.
	Prefix string `json:"prefix,omitempty"`

	// Fingerprints names a JSON file, inside the asset source, mapping
	// asset names to fingerprinted names.
	Fingerprints string `json:"fingerprints,omitempty"`

	// ScriptExt is appended to a view's js reference to name its script.
	ScriptExt string `json:"scriptExt,omitempty"`

	// S3 reads assets from a bucket instead of Dir.
	S3 *S3Config `json:"s3,omitempty"`
}

// S3Config locates assets in an S3 bucket.
type S3Config struct {
	Bucket    string `json:"bucket"`
	Prefix    string `json:"prefix,omitempty"`
	Region    string `json:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	PathStyle bool   `json:"pathStyle,omitempty"`
}

// MetricsConfig contains Prometheus configuration.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled"`
	Path      string `json:"path,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry configuration.
type TracingConfig struct {
	Enabled    bool   `json:"enabled"`
	TracerName string `json:"tracerName,omitempty"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Manifest: DefaultManifest,
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     "10s",
			ShutdownTimeout: "5s",
		},
		Assets: AssetsConfig{
			Dir:       DefaultAssetsDir,
			Prefix:    DefaultAssetsPrefix,
			ScriptExt: ".js",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      DefaultMetricsPath,
			Namespace: "navtree",
		},
		Tracing: TracingConfig{
			TracerName: "navtree",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for navtree.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E501").
				WithDetail("No navtree.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'navtree init' to create one").
				Wrap(err)
		}
		return nil, errors.New("E501").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E501").
			WithDetail("Failed to parse navtree.json: " + err.Error()).
			WithSuggestion("Check that navtree.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E501").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E501").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Manifest == "" {
		c.Manifest = DefaultManifest
	}

	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "5s"
	}

	if c.Assets.Dir == "" {
		c.Assets.Dir = DefaultAssetsDir
	}
	if c.Assets.Prefix == "" {
		c.Assets.Prefix = DefaultAssetsPrefix
	}
	if c.Assets.ScriptExt == "" {
		c.Assets.ScriptExt = ".js"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "navtree"
	}

	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "navtree"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New("E501").WithDetail(fmt.Sprintf(format, args...))
	}

	if c.Manifest == "" {
		return invalid("manifest must be set")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return invalid("Port must be between 0 and 65535")
	}
	for name, d := range map[string]string{
		"server.readTimeout":     c.Server.ReadTimeout,
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return invalid("%s: %v", name, err)
		}
	}
	if c.Assets.S3 != nil && c.Assets.S3.Bucket == "" {
		return invalid("assets.s3.bucket must be set when assets.s3 is present")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path must start with '/'; got %q", c.Metrics.Path)
	}
	if _, err := c.LogLevel(); err != nil {
		return invalid("log.level: %v", err)
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format must be text or json; got %q", c.Log.Format)
	}
	return nil
}

// Address returns the listen address of the server.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// ManifestPath returns the manifest path resolved against the config directory.
func (c *Config) ManifestPath() string {
	return c.resolve(c.Manifest)
}

// AssetsDir returns the assets directory resolved against the config directory.
func (c *Config) AssetsDir() string {
	return c.resolve(c.Assets.Dir)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

// ReadTimeout returns the parsed server read timeout.
func (c *Config) ReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ReadTimeout)
	return d
}

// ShutdownTimeout returns the parsed graceful shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ShutdownTimeout)
	return d
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	err := level.UnmarshalText([]byte(c.Log.Level))
	return level, err
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing navtree.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E501").
				WithDetail("No navtree.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'navtree init' to create one")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its nearest parent holding navtree.json.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
