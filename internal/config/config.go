// Package config provides application configuration management.
// It loads settings from environment variables (optionally seeded from a
// .env file) and provides defaults for the server, storage, snapshots,
// rate limits and observability sinks.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	CookieSecure    bool // Mark visitor and theme cookies Secure (HTTPS deployments)

	// Data Configuration
	DataDir     string        // Data directory for the SQLite database
	VisitorTTL  time.Duration // Visitors not seen for this long are deleted
	CleanupHour int           // Local hour (0-23) of the daily visitor cleanup
	Timezone    string        // IANA zone for scheduling and the footer year

	// Visibility recorder
	VisibilityQueueSize int

	// Rate Limits (Token Bucket Algorithm, per visitor)
	RateBurst  float64
	RateRefill float64 // tokens per second

	// R2 Snapshot Configuration
	R2Enabled         bool
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2SnapshotKey     string
	SnapshotInterval  time.Duration

	// Sentry (Better Stack Errors) Configuration
	SentryToken       string
	SentryHost        string
	SentryEnvironment string
	SentrySampleRate  float64

	// Better Stack Logs Configuration
	BetterStackToken    string
	BetterStackEndpoint string

	// Metrics Authentication
	MetricsAuthEnabled bool
	MetricsUsername    string
	MetricsPassword    string
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, DefaultShutdownTimeout),
		CookieSecure:    getBoolEnv(EnvCookieSecure, false),

		DataDir:     getEnv(EnvDataDir, getDefaultDataDir()),
		VisitorTTL:  getDurationEnv(EnvVisitorTTL, 180*24*time.Hour),
		CleanupHour: getIntEnv(EnvCleanupHour, 4),
		Timezone:    getEnv(EnvTimezone, "UTC"),

		VisibilityQueueSize: getIntEnv(EnvVisibilityQueueSize, 1024),

		RateBurst:  getFloatEnv(EnvRateBurst, 30),
		RateRefill: getFloatEnv(EnvRateRefill, 5),

		R2Enabled:         getBoolEnv(EnvR2Enabled, false),
		R2AccountID:       getEnv(EnvR2AccountID, ""),
		R2AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
		R2SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
		R2BucketName:      getEnv(EnvR2BucketName, ""),
		R2SnapshotKey:     getEnv(EnvR2SnapshotKey, "snapshots/visitors.db.zst"),
		SnapshotInterval:  getDurationEnv(EnvSnapshotInterval, time.Hour),

		SentryToken:       getEnv(EnvSentryToken, ""),
		SentryHost:        getEnv(EnvSentryHost, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		MetricsAuthEnabled: getBoolEnv(EnvMetricsAuthEnabled, false),
		MetricsUsername:    getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword:    getEnv(EnvMetricsPassword, ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvPort))
	}
	if c.DataDir == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvDataDir))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvShutdownTimeout, c.ShutdownTimeout))
	}
	if c.VisitorTTL <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvVisitorTTL, c.VisitorTTL))
	}
	if c.CleanupHour < 0 || c.CleanupHour > 23 {
		errs = append(errs, fmt.Errorf("%s must be within 0-23, got %d", EnvCleanupHour, c.CleanupHour))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", EnvTimezone, err))
	}
	if c.VisibilityQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvVisibilityQueueSize, c.VisibilityQueueSize))
	}
	if c.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %v", EnvRateBurst, c.RateBurst))
	}
	if c.RateRefill <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvRateRefill, c.RateRefill))
	}
	if c.R2Enabled {
		for key, value := range map[string]string{
			EnvR2AccountID:       c.R2AccountID,
			EnvR2AccessKeyID:     c.R2AccessKeyID,
			EnvR2SecretAccessKey: c.R2SecretAccessKey,
			EnvR2BucketName:      c.R2BucketName,
		} {
			if value == "" {
				errs = append(errs, fmt.Errorf("%s is required when %s is true", key, EnvR2Enabled))
			}
		}
		if c.SnapshotInterval <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvSnapshotInterval, c.SnapshotInterval))
		}
	}
	if c.SentryToken != "" && c.SentryHost == "" {
		errs = append(errs, fmt.Errorf("%s is required when %s is set", EnvSentryHost, EnvSentryToken))
	}
	if c.MetricsAuthEnabled && c.MetricsPassword == "" {
		errs = append(errs, fmt.Errorf("%s is required when %s is true", EnvMetricsPassword, EnvMetricsAuthEnabled))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "visitors.db")
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// R2Endpoint returns the S3-compatible endpoint for the configured account.
func (c *Config) R2Endpoint() string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.R2AccountID)
}
