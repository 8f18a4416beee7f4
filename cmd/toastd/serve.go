package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/vango-dev/toast/internal/config"
	"github.com/vango-dev/toast/internal/errors"
	"github.com/vango-dev/toast/pkg/metrics"
	"github.com/vango-dev/toast/pkg/server"
	"github.com/vango-dev/toast/pkg/toast"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		logLevel   string
		noMetrics  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the toast server",
		Long: `Start the toast server.

Configuration is read from --config, or from toast.json / toast.yaml in
the working directory or the nearest parent. Without a config file the
built-in defaults are used.

Examples:
  toastd serve
  toastd serve --addr=:8080
  toastd serve --config=deploy/toast.yaml --log-level=debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			// Apply command-line overrides
			if addr != "" {
				cfg.Server.Address = addr
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if noMetrics {
				cfg.Metrics.Enabled = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to toast.json or toast.yaml")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "Disable the metrics endpoint")

	return cmd
}

// loadConfig reads path, or searches from the working directory when path
// is empty. A missing config file only matters when path was given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.LoadFromWorkingDir()
	if errors.HasCode(err, "E101") {
		return config.New(), nil
	}
	return cfg, err
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cfg.Log, os.Stderr)

	srv, release, err := newServer(cfg, logger)
	if err != nil {
		return err
	}
	defer release()

	printBanner()
	success("Listening on http://%s", cfg.Server.Address)
	info("Stream:  ws://%s/ws", cfg.Server.Address)
	if cfg.Metrics.Enabled {
		info("Metrics: http://%s%s", cfg.Server.Address, cfg.Metrics.Path)
	}
	if path := cfg.Path(); path != "" {
		info("Config:  %s", path)
	} else {
		warn("No config file found, using defaults")
	}
	fmt.Println()

	return srv.Run(ctx)
}

// newLogger builds the process logger from the log settings.
func newLogger(lc config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(lc.Level)}
	var h slog.Handler
	if lc.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newServer wires a store, optional metrics and the HTTP server from cfg.
// release detaches the metrics collector from the store.
func newServer(cfg *config.Config, logger *slog.Logger) (*server.Server, func(), error) {
	if cfg.Name != "" {
		logger = logger.With("deployment", cfg.Name)
	}

	patch, err := cfg.DefaultsPatch()
	if err != nil {
		return nil, nil, err
	}

	storeOpts := []toast.StoreOption{
		toast.WithLogger(logger.With("component", "store")),
	}
	if cfg.Tracing.TracerName != "" {
		storeOpts = append(storeOpts, toast.WithTracer(otel.Tracer(cfg.Tracing.TracerName)))
	}
	store := toast.New(storeOpts...)
	store.SetDefaults(patch)

	sc := &server.Config{
		Address:         cfg.Server.Address,
		ReadTimeout:     cfg.ReadTimeout(),
		WriteTimeout:    cfg.WriteTimeout(),
		ShutdownTimeout: cfg.ShutdownTimeout(),
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		MaxClients:      cfg.Server.MaxClients,
		ClientBuffer:    cfg.Server.ClientBuffer,
		MetricsPath:     cfg.Metrics.Path,
		TracerName:      cfg.Tracing.TracerName,
		Logger:          logger.With("component", "server"),
	}

	release := func() {}
	if cfg.Metrics.Enabled {
		collector := metrics.New(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithRegistry(prometheus.NewRegistry()),
		)
		release = collector.Attach(store)
		sc.Metrics = collector
	}

	return server.New(store, sc), release, nil
}
