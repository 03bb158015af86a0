package app

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/garyellow/itdept-site/internal/ctxutil"
	"github.com/garyellow/itdept-site/internal/logger"
	"github.com/garyellow/itdept-site/internal/metrics"
	"github.com/garyellow/itdept-site/internal/ratelimit"
	"github.com/garyellow/itdept-site/internal/theme"
)

const (
	visitorCookie   = "visitor_id"
	requestIDHeader = "X-Request-Id"
)

// requestIDMiddleware propagates the caller's request id, or issues one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = c.GetHeader("X-Correlation-Id")
		}
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// visitorMiddleware identifies the browser by a UUID cookie, issuing a new
// one when the cookie is missing or malformed.
func visitorMiddleware(secure bool) gin.HandlerFunc {
	maxAge := int(theme.CookieMaxAge / time.Second)
	return func(c *gin.Context) {
		visitorID, err := c.Cookie(visitorCookie)
		if err != nil || uuid.Validate(visitorID) != nil {
			visitorID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(visitorCookie, visitorID, maxAge, "/", "", secure, true)
		}
		c.Request = c.Request.WithContext(ctxutil.WithVisitorID(c.Request.Context(), visitorID))
		c.Next()
	}
}

// rateLimitMiddleware applies the per-visitor token bucket.
func rateLimitMiddleware(limiter *ratelimit.KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitorID := ctxutil.GetVisitorID(c.Request.Context())
		if limiter.Allow(visitorID) {
			c.Next()
			return
		}

		retry := int(math.Ceil(limiter.RetryAfter(visitorID).Seconds()))
		if retry < 1 {
			retry = 1
		}
		c.Header("Retry-After", strconv.Itoa(retry))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": retry,
		})
	}
}

// securityHeadersMiddleware adds security headers to responses.
// Hero and news images are remote, everything else is same-origin.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Header("Content-Security-Policy",
			"default-src 'self'; img-src 'self' https: data:; style-src 'self' 'unsafe-inline'; "+
				"form-action 'self'; frame-ancestors 'none'; base-uri 'none'")
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Next()
	}
}

// loggingMiddleware logs HTTP requests with status-based log levels
// (5xx=Error, 4xx=Warn, 404=Debug, 3xx/2xx=Debug) and records request metrics.
func loggingMiddleware(log *logger.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(route, strconv.Itoa(status), duration.Seconds())

		entry := log.WithField("http_method", method).
			WithField("http_path", path).
			WithField("http_route", route).
			WithField("http_status", status).
			WithField("duration_ms", duration.Milliseconds()).
			WithField("client_ip", c.ClientIP())

		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			entry.ErrorContext(ctx, "HTTP request failed")
		case status >= 400 && status != http.StatusNotFound:
			entry.WarnContext(ctx, "HTTP request rejected")
		case status == http.StatusNotFound:
			entry.DebugContext(ctx, "HTTP request not found")
		default:
			entry.DebugContext(ctx, "HTTP request completed")
		}
	}
}
