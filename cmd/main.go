package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/dreamteam/internal/adapters/http/api"
	"github.com/okian/dreamteam/internal/adapters/http/site"
	"github.com/okian/dreamteam/internal/adapters/http/swagger"
	"github.com/okian/dreamteam/internal/adapters/torre"
	app "github.com/okian/dreamteam/internal/app"
	"github.com/okian/dreamteam/internal/config"
	"github.com/okian/dreamteam/pkg/logger"
	"github.com/okian/dreamteam/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := registerBuildInfo(metrics.GetRegistry()); err != nil {
		loggerInstance.Warn(ctx, "build info collector not registered", logger.Error(err))
	}

	mux, _ := buildMux(ctx, cfg, loggerInstance)

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("search_endpoint", cfg.SearchEndpoint),
			logger.Int("enrich_concurrency", cfg.EnrichConcurrency),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// buildMux wires the upstream clients, the pipeline service and every route.
func buildMux(ctx context.Context, cfg *config.Config, log logger.Logger) (*http.ServeMux, *app.Service) {
	searcher := torre.NewSearchClient(cfg.SearchEndpoint,
		torre.WithLimit(cfg.SearchLimit),
		torre.WithTimeout(cfg.SearchTimeout()),
		torre.WithLogger(log.Named("search")),
	)
	genomes := torre.NewGenomeClient(cfg.GenomeEndpoint,
		torre.WithTimeout(cfg.GenomeTimeout()),
		torre.WithLogger(log.Named("genome")),
	)

	svc := app.New(searcher, genomes,
		app.WithLogger(log.Named("service")),
		app.WithEnrichConcurrency(cfg.EnrichConcurrency),
		app.WithDefaultTeamSize(cfg.DefaultTeamSize),
		app.WithMaxTeamSize(cfg.MaxTeamSize),
	)

	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc, api.SearchConfig{
		DefaultTeamSize: cfg.DefaultTeamSize,
		MaxTeamSize:     cfg.MaxTeamSize,
		StreamTimeout:   cfg.StreamTimeout(),
		EventBuffer:     cfg.EventBuffer,
		AllowOrigin:     cfg.FrontendURL,
	}, api.WithLogger(log.Named("api")))
	apiServer.Register(ctx, mux)

	return mux, svc
}

// registerBuildInfo exposes the binary's module version on the registry.
func registerBuildInfo(reg prometheus.Registerer) error {
	err := reg.Register(collectors.NewBuildInfoCollector())
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}
	return err
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		// Calculate average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
