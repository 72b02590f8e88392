package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/config"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/handlers"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/metrics"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/middleware"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/observability"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/server"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", handlers.Version,
		"addr", cfg.Address(),
		"csv_file", cfg.Data.CSVFile,
		"reload_on_change", cfg.Data.ReloadOnChange,
		"metrics", cfg.Metrics.Enabled,
		"tracing", cfg.Tracing.Enabled,
	)

	shutdownTracing, err := observability.InitTracing(cfg.Tracing, os.Stdout)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	var m *metrics.Manager
	if cfg.Metrics.Enabled {
		m = metrics.NewManager(metrics.WithNamespace(cfg.Metrics.Namespace))
	}

	cache := services.NewDatasetCache(
		services.WithReloadOnChange(cfg.Data.ReloadOnChange),
		services.WithCacheLogger(logger),
		services.WithCacheMetrics(m),
	)
	dashboard := services.NewDashboard(cache, cfg.Data.CSVFile,
		services.WithLogger(logger),
		services.WithMetrics(m),
	)

	warmUp(dashboard, cfg, logger)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, dashboard, m, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server.ShutdownTimeout)
	gracefulServer.RegisterShutdownHook("tracing", func(ctx context.Context) error {
		return shutdownTracing(ctx)
	})
	gracefulServer.RegisterShutdownHook("dataset cache", func(ctx context.Context) error {
		cache.InvalidateAll()
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}

// warmUp loads the dataset before serving. A failure is logged and the
// server starts anyway; the dashboard reports the data as unavailable until
// the file can be read.
func warmUp(dashboard *services.Dashboard, cfg *config.Config, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Data.LoadTimeout)
	defer cancel()

	ds, err := dashboard.Dataset(ctx)
	if err != nil {
		logger.Warn("dataset not available at startup", "source", cfg.Data.CSVFile, "error", err)
		return
	}
	logger.Info("dataset loaded", "source", ds.Source, "rows", ds.Len(), "dropped", ds.Dropped)
}

func newHandler(cfg *config.Config, dashboard *services.Dashboard, m *metrics.Manager, logger *slog.Logger) http.Handler {
	opts := []server.Option{server.WithAdminToken(cfg.Security.AdminToken)}
	if m != nil {
		opts = append(opts, server.WithMetrics(m))
	}
	srv := server.NewServer(dashboard, logger, opts...)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.Logger(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	return middlewareChain(srv)
}
