package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navtree/internal/config"
	"github.com/vango-dev/navtree/internal/watch"
	"github.com/vango-dev/navtree/pkg/assets"
	"github.com/vango-dev/navtree/pkg/middleware"
	"github.com/vango-dev/navtree/pkg/router"
	"github.com/vango-dev/navtree/pkg/server"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	var (
		port       int
		host       string
		readOnly   bool
		watchFiles bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the route tree over HTTP",
		Long: `Serve the route tree over HTTP and WebSocket.

Clients resolve paths at /resolve, fetch rendered views at /view and
navigate with history over /ws. Routes can be edited at /routes and
reloaded from the manifest with POST /reload, or automatically with
--watch.

Examples:
  navtree serve
  navtree serve --watch
  navtree serve --port=9000 --read-only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if readOnly {
				cfg.Server.ReadOnly = true
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := newServer(ctx, cfg, opts.verbose, cmd)
			if err != nil {
				return err
			}

			if watchFiles {
				go watchManifest(ctx, cfg, srv)
			}

			out := cmd.OutOrStdout()
			success(out, "Serving %s", cfg.ManifestPath())
			info(out, "http://%s", cfg.Address())
			return srv.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from navtree.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from navtree.json)")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Disable route editing")
	cmd.Flags().BoolVarP(&watchFiles, "watch", "w", false, "Reload the tree when the manifest changes")

	return cmd
}

// newServer wires the tree, the asset pipeline and the navigation
// middleware described by cfg into a server.
func newServer(ctx context.Context, cfg *config.Config, verbose bool, cmd *cobra.Command) (*server.Server, error) {
	logger, err := newLogger(cfg, verbose, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	tree, err := loadTree(cfg)
	if err != nil {
		return nil, err
	}
	assembler, src, err := newAssembler(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var mw []router.Middleware
	if cfg.Tracing.Enabled {
		mw = append(mw, middleware.OpenTelemetry(middleware.WithTracerName(cfg.Tracing.TracerName)))
	}
	mw = append(mw, middleware.Logging(logger), middleware.Recover(logger))

	srvCfg := server.DefaultConfig()
	srvCfg.Address = cfg.Address()
	if d := cfg.ReadTimeout(); d > 0 {
		srvCfg.ReadTimeout = d
	}
	if d := cfg.ShutdownTimeout(); d > 0 {
		srvCfg.ShutdownTimeout = d
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		srvCfg.CheckOrigin = server.AllowOrigins(cfg.Server.AllowedOrigins...)
	}
	srvCfg.ReadOnly = cfg.Server.ReadOnly
	srvCfg.Renderer = assembler
	srvCfg.Middleware = mw
	srvCfg.AssetPrefix = cfg.Assets.Prefix
	srvCfg.Assets = assets.Handler(src)
	srvCfg.Reload = func() (*router.Tree, error) {
		return loadTree(cfg)
	}
	if cfg.Metrics.Enabled {
		srvCfg.MetricsPath = cfg.Metrics.Path
		srvCfg.MetricsNamespace = cfg.Metrics.Namespace
	}

	return server.New(tree, srvCfg, server.WithLogger(logger)), nil
}

// watchManifest reloads the served tree whenever a manifest file changes,
// until ctx is done. A manifest that fails to load leaves the current tree
// in place.
func watchManifest(ctx context.Context, cfg *config.Config, srv *server.Server) {
	manifestPath := cfg.ManifestPath()
	paths := []string{manifestPath}
	if cfg.Assets.S3 == nil {
		paths = append(paths, cfg.AssetsDir())
	}

	w := watch.New(watch.Config{
		Paths: paths,
		Classify: func(p string) watch.ChangeType {
			if p == manifestPath || strings.HasPrefix(p, manifestPath+string(filepath.Separator)) {
				return watch.ChangeManifest
			}
			return watch.Classify(p)
		},
	})

	logger := srv.Logger()
	w.OnChange(func(changes []watch.Change) {
		for _, c := range changes {
			logger.Debug("file changed", "path", c.Path, "type", c.Type, "removed", c.Removed)
		}
		if !watch.Has(changes, watch.ChangeManifest) {
			return
		}

		tree, err := loadTree(cfg)
		if err != nil {
			logger.Error("manifest reload failed", "error", err)
			return
		}
		srv.SetTree(tree)
		logger.Info("tree reloaded", "routes", tree.Len())
	})
	w.Start(ctx)
}

// newAssembler opens the configured asset source and builds an assembler
// over it, loading fingerprints when configured.
func newAssembler(ctx context.Context, cfg *config.Config) (*assets.Assembler, assets.Source, error) {
	var src assets.Source
	if s3cfg := cfg.Assets.S3; s3cfg != nil {
		client := assets.NewS3Client(assets.S3Config{
			Region:    s3cfg.Region,
			Endpoint:  s3cfg.Endpoint,
			PathStyle: s3cfg.PathStyle,
		})
		src = assets.NewS3Source(client, s3cfg.Bucket, s3cfg.Prefix)
	} else {
		src = assets.NewDirSource(os.DirFS(cfg.AssetsDir()))
	}

	opts := []assets.AssemblerOption{
		assets.WithPrefix(cfg.Assets.Prefix),
	}
	if cfg.Assets.ScriptExt != "" {
		opts = append(opts, assets.WithScriptExt(cfg.Assets.ScriptExt))
	}
	if cfg.Assets.Fingerprints != "" {
		fp, err := assets.LoadFingerprints(ctx, src, cfg.Assets.Fingerprints)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, assets.WithFingerprints(fp))
	}
	return assets.NewAssembler(src, opts...), src, nil
}
