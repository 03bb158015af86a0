// Package sentry reports server errors to Better Stack through its
// Sentry-compatible ingestion endpoint.
package sentry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

// Config holds Sentry configuration for Better Stack integration.
type Config struct {
	// Token is the Better Stack Errors application token. Empty disables reporting.
	Token string

	// Host is the Better Stack Errors ingesting host (e.g., "errors.betterstack.com").
	Host string

	Environment string
	Release     string

	// SampleRate controls error sampling (0.0-1.0). Zero means 1.0.
	SampleRate float64
}

// ErrMissingHost is returned when a token is configured without a host.
var ErrMissingHost = errors.New("sentry host is required when token is provided")

// DSN builds the Better Stack DSN. The project ID is required by the SDK
// and ignored by Better Stack.
func (c Config) DSN() string {
	return fmt.Sprintf("https://%s@%s/1", c.Token, c.Host)
}

// Initialize sets up the Sentry SDK. It returns false without error when
// reporting is disabled.
func Initialize(cfg Config) (bool, error) {
	if cfg.Token == "" {
		return false, nil
	}
	if cfg.Host == "" {
		return false, ErrMissingHost
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 || sampleRate > 1 {
		sampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN(),
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       sampleRate,
		AttachStacktrace: true,
		BeforeSend:       scrubEvent,
	})
	if err != nil {
		return false, fmt.Errorf("sentry init: %w", err)
	}
	return true, nil
}

// scrubEvent strips visitor identifiers before an event leaves the process.
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event == nil || event.Request == nil {
		return event
	}
	event.Request.Cookies = ""
	if event.Request.Headers != nil {
		delete(event.Request.Headers, "Cookie")
		delete(event.Request.Headers, "Authorization")
	}
	return event
}

// Flush waits for buffered events to be sent to the server.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// IsEnabled returns true if Sentry is initialized and active.
func IsEnabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// CaptureRequestError reports err using the request-scoped hub installed by
// the gin middleware, tagging it with the matched route.
func CaptureRequestError(ctx context.Context, r *http.Request, route string, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("route", route)
		if r != nil {
			scope.SetRequest(r)
		}
		hub.CaptureException(err)
	})
}

// CaptureException reports a background error.
func CaptureException(err error) {
	sentry.CaptureException(err)
}
