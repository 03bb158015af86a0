// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	visitorIDKey contextKey = "ctxutil.visitorID"
	requestIDKey contextKey = "ctxutil.requestID"
)

// WithVisitorID adds a visitor ID to the context.
// The visitor ID comes from the visitor cookie and keys all per-visitor state.
func WithVisitorID(ctx context.Context, visitorID string) context.Context {
	return context.WithValue(ctx, visitorIDKey, visitorID)
}

// GetVisitorID retrieves the visitor ID from the context.
// Returns the visitor ID if found, empty string otherwise.
func GetVisitorID(ctx context.Context) string {
	if v := ctx.Value(visitorIDKey); v != nil {
		if visitorID, ok := v.(string); ok && visitorID != "" {
			return visitorID
		}
	}
	return ""
}

// MustGetVisitorID retrieves the visitor ID from the context.
// Panics if the visitor ID is not found. Use this only behind the visitor middleware.
func MustGetVisitorID(ctx context.Context) string {
	visitorID, ok := ctx.Value(visitorIDKey).(string)
	if !ok || visitorID == "" {
		panic("ctxutil: visitorID not found")
	}
	return visitorID
}

// WithRequestID adds a request ID to the context for tracing.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok
}
