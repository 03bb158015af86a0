// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/garyellow/itdept-site/internal/buildinfo"
	"github.com/garyellow/itdept-site/internal/config"
	"github.com/garyellow/itdept-site/internal/content"
	"github.com/garyellow/itdept-site/internal/logger"
	"github.com/garyellow/itdept-site/internal/metrics"
	"github.com/garyellow/itdept-site/internal/page"
	"github.com/garyellow/itdept-site/internal/r2client"
	"github.com/garyellow/itdept-site/internal/ratelimit"
	"github.com/garyellow/itdept-site/internal/readiness"
	"github.com/garyellow/itdept-site/internal/sentry"
	"github.com/garyellow/itdept-site/internal/snapshot"
	"github.com/garyellow/itdept-site/internal/storage"
	"github.com/garyellow/itdept-site/internal/visibility"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg       *config.Config
	logger    *logger.Logger
	db        *storage.DB
	content   *content.Content
	tmpl      *template.Template
	metrics   *metrics.Metrics
	registry  *prometheus.Registry
	tracker   *visibility.Tracker
	recorder  *visibility.Recorder
	limiter   *ratelimit.KeyedLimiter
	snapshots *snapshot.Manager // nil when R2 is disabled
	readiness *readiness.State
	handler   http.Handler
	server    *http.Server
	now       func() time.Time
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})

	log = log.WithField("service", "itdept-site").WithField("version", buildinfo.Release())
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Package-level slog calls pick up request_id and visitor_id through
	// the ContextHandler.
	slog.SetDefault(log.Logger)

	log.Info("Initializing application...")
	if cfg.BetterStackToken != "" {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	enabled, err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.Release(),
		SampleRate:  cfg.SentrySampleRate,
	})
	switch {
	case err != nil:
		log.WithError(err).Warn("Error reporting disabled")
	case enabled:
		log.WithField("host", cfg.SentryHost).Info("Error reporting enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	c, err := content.Load()
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	for section, n := range c.Counts() {
		m.SetContentItems(section, n)
	}

	tmpl, err := page.Templates()
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}

	var snapshots *snapshot.Manager
	if cfg.R2Enabled {
		client, err := r2client.New(ctx, r2client.Config{
			Endpoint:    cfg.R2Endpoint(),
			AccessKeyID: cfg.R2AccessKeyID,
			SecretKey:   cfg.R2SecretAccessKey,
			BucketName:  cfg.R2BucketName,
		})
		if err != nil {
			return nil, fmt.Errorf("r2 client: %w", err)
		}
		snapshots = snapshot.New(client, snapshot.Config{
			SnapshotKey: cfg.R2SnapshotKey,
			TempDir:     cfg.DataDir,
		}, log, m)

		restoreCtx, cancel := context.WithTimeout(ctx, config.SnapshotTimeout)
		restored, err := snapshots.Restore(restoreCtx, cfg.SQLitePath())
		cancel()
		if err != nil {
			// A fresh database is better than no site.
			log.WithError(err).Warn("Snapshot restore failed, starting with an empty database")
		} else if restored {
			log.WithField("key", cfg.R2SnapshotKey).Info("Database restored from snapshot")
		}
	}

	db, err := storage.New(ctx, cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).WithField("visitor_ttl", cfg.VisitorTTL).Info("Database connected")

	recorder := visibility.NewRecorder(db, visibility.RecorderConfig{
		QueueSize: cfg.VisibilityQueueSize,
		Logger:    log,
		Metrics:   m,
	})

	limiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "visitor",
		Burst:         cfg.RateBurst,
		RefillRate:    cfg.RateRefill,
		CleanupPeriod: config.RateLimiterCleanupInterval,
		Metrics:       m,
	})

	ready := readiness.New()
	ready.AddCheck("database", db.Ping)

	app := &Application{
		cfg:       cfg,
		logger:    log,
		db:        db,
		content:   c,
		tmpl:      tmpl,
		metrics:   m,
		registry:  registry,
		tracker:   visibility.NewTracker(content.Regions(), recorder),
		recorder:  recorder,
		limiter:   limiter,
		snapshots: snapshots,
		readiness: ready,
		now:       time.Now,
	}

	// gzhttp skips bodies below its minimum size and already compressed
	// content types, so it wraps the whole router.
	app.handler = gzhttp.GzipHandler(app.newRouter())

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.handler,
		ReadHeaderTimeout: config.HTTPReadHeader,
		ReadTimeout:       config.HTTPRead,
		WriteTimeout:      config.HTTPWrite,
		IdleTimeout:       config.HTTPIdle,
	}

	ready.MarkReady()
	log.Info("Initialization complete")
	return app, nil
}

// Handler returns the root HTTP handler.
func (a *Application) Handler() http.Handler {
	return a.handler
}

// Run starts the HTTP server and background jobs and blocks until
// SIGINT/SIGTERM.
//
// Shutdown order:
//  1. Mark not ready so the load balancer stops routing here
//  2. Cancel background jobs and wait for them
//  3. Drain in-flight HTTP requests
//  4. Flush queued visibility writes, take a final snapshot, close the database
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	a.startBackgroundJobs(gctx, g)

	serverErr := make(chan error, 1)
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErr:
		a.logger.WithError(err).Error("HTTP server error")
		runErr = fmt.Errorf("http server: %w", err)
	}

	a.readiness.MarkDraining()

	cancel()
	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	if err := g.Wait(); err != nil {
		a.logger.WithError(err).Warn("Background job error")
	}
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	if err := a.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// shutdown stops the HTTP server and releases resources. It must run after
// background jobs have stopped.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Flushing visibility updates...")
	flushCtx, flushCancel := context.WithTimeout(shutdownCtx, config.VisibilityFlushTimeout)
	if err := a.recorder.Close(flushCtx); err != nil {
		a.logger.WithError(err).Warn("Visibility flush timed out, pending updates lost")
	}
	flushCancel()

	if a.snapshots != nil {
		//nolint:contextcheck // the final snapshot gets its own deadline
		a.uploadSnapshot(context.Background())
	}

	a.limiter.Stop()

	var closeErr error
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
		closeErr = fmt.Errorf("close database: %w", err)
	}

	if sentry.IsEnabled() {
		sentry.Flush(2 * time.Second)
	}

	a.logger.Info("Shutdown complete")
	return closeErr
}
