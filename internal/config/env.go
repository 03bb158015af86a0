// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "ITDEPT_PORT"
	EnvLogLevel        = "ITDEPT_LOG_LEVEL"
	EnvShutdownTimeout = "ITDEPT_SHUTDOWN_TIMEOUT"
	EnvCookieSecure    = "ITDEPT_COOKIE_SECURE"

	// Data
	EnvDataDir     = "ITDEPT_DATA_DIR"
	EnvVisitorTTL  = "ITDEPT_VISITOR_TTL"
	EnvCleanupHour = "ITDEPT_CLEANUP_HOUR"
	EnvTimezone    = "ITDEPT_TIMEZONE"

	// Visibility
	EnvVisibilityQueueSize = "ITDEPT_VISIBILITY_QUEUE_SIZE"

	// Rate Limits
	EnvRateBurst  = "ITDEPT_RATE_BURST"
	EnvRateRefill = "ITDEPT_RATE_REFILL"

	// R2 Snapshot Feature
	EnvR2Enabled         = "ITDEPT_R2_ENABLED"
	EnvR2AccountID       = "ITDEPT_R2_ACCOUNT_ID"
	EnvR2AccessKeyID     = "ITDEPT_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "ITDEPT_R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "ITDEPT_R2_BUCKET_NAME"
	EnvR2SnapshotKey     = "ITDEPT_R2_SNAPSHOT_KEY"
	EnvSnapshotInterval  = "ITDEPT_SNAPSHOT_INTERVAL"

	// Sentry Feature
	EnvSentryToken       = "ITDEPT_SENTRY_TOKEN"
	EnvSentryHost        = "ITDEPT_SENTRY_HOST"
	EnvSentryEnvironment = "ITDEPT_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "ITDEPT_SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackToken    = "ITDEPT_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "ITDEPT_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsAuthEnabled = "ITDEPT_METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "ITDEPT_METRICS_USERNAME"
	EnvMetricsPassword    = "ITDEPT_METRICS_PASSWORD"
)
