package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navtree/internal/config"
	"github.com/vango-dev/navtree/internal/errors"
	"github.com/vango-dev/navtree/pkg/manifest"
	"github.com/vango-dev/navtree/pkg/router"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err, "E602")
		os.Exit(1)
	}
}

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	manifest   string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "navtree",
		Short: "Route trees for path-based navigation",
		Long: `navtree resolves URL paths against a tree of routes declared in an
HCL manifest.

Each route names one path segment and a view made of an HTML fragment,
a stylesheet and a controller script. Wildcard segments capture one
segment, a fixed number of segments, or the rest of the path.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to navtree.json (default: nearest in the working directory or a parent)")
	rootCmd.PersistentFlags().StringVarP(&opts.manifest, "manifest", "m", "", "Manifest file or directory (overrides navtree.json)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(
		initCmd(),
		checkCmd(opts),
		resolveCmd(opts),
		routesCmd(opts),
		serveCmd(opts),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig reads navtree.json. Without one, a --manifest flag is enough
// to run with defaults.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
		if err != nil && o.manifest != "" {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	if o.manifest != "" {
		abs, err := filepath.Abs(o.manifest)
		if err != nil {
			return nil, err
		}
		cfg.Manifest = abs
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadTree builds the route tree from the configured manifest.
func loadTree(cfg *config.Config) (*router.Tree, error) {
	m, err := manifest.Load(cfg.ManifestPath())
	if err != nil {
		return nil, err
	}
	return m.Build()
}

// newLogger creates the process logger from the log configuration.
func newLogger(cfg *config.Config, verbose bool, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, errors.New("E501").WithDetail("log.level: " + err.Error())
	}
	if verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
