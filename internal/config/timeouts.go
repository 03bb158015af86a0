// Package config provides centralized timeout constants for the application.
//
// The site serves small server-rendered pages and JSON payloads, so HTTP
// timeouts are short. Background work (snapshots, cleanup) runs on its own
// deadlines so a slow object store never holds a request open.
package config

import "time"

// HTTP server timeouts
const (
	// HTTPReadHeader bounds slow clients sending headers.
	HTTPReadHeader = 5 * time.Second

	// HTTPRead is the HTTP server read timeout. Request bodies are tiny
	// (visibility batches are a few hundred bytes).
	HTTPRead = 10 * time.Second

	// HTTPWrite is the HTTP server write timeout for rendered pages.
	HTTPWrite = 15 * time.Second

	// HTTPIdle is the idle timeout for keep-alive connections.
	HTTPIdle = 120 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	DatabaseBusyTimeout = 5 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of reader connections.
	DatabaseConnMaxLifetime = time.Hour

	// StorageOperation bounds a single request-path database call.
	StorageOperation = 3 * time.Second
)

// Background job settings
const (
	// CleanupTimeout bounds one visitor cleanup run.
	CleanupTimeout = 5 * time.Minute

	// SnapshotTimeout bounds one snapshot upload or restore.
	SnapshotTimeout = 2 * time.Minute

	// MetricsUpdateInterval is how often gauges are refreshed.
	MetricsUpdateInterval = 5 * time.Minute

	// RateLimiterCleanupInterval is how often idle per-visitor limiters are dropped.
	RateLimiterCleanupInterval = 5 * time.Minute

	// ReadinessCheckTimeout bounds the /readyz dependency checks.
	ReadinessCheckTimeout = 2 * time.Second

	// VisibilityFlushTimeout bounds draining queued visibility writes at shutdown.
	VisibilityFlushTimeout = 5 * time.Second
)
