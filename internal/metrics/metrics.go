// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPDurationSeconds *prometheus.HistogramVec
	HTTPErrorsTotal     *prometheus.CounterVec

	// Interaction metrics
	ThemeTogglesTotal   *prometheus.CounterVec
	CarouselMovesTotal  *prometheus.CounterVec
	CourseSearchesTotal *prometheus.CounterVec

	// Visibility metrics
	SectionsRevealedTotal *prometheus.CounterVec
	VisibilityDropped     prometheus.Counter
	VisibilityQueueDepth  prometheus.Gauge

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
	RateLimiterKeys    *prometheus.GaugeVec

	// Storage metrics
	VisitorsStored     prometheus.Gauge
	VisitorsCleanedUp  prometheus.Counter
	SnapshotsTotal     *prometheus.CounterVec
	SnapshotDuration   *prometheus.HistogramVec
	ContentItemsLoaded *prometheus.GaugeVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "itdept_http_requests_total",
				Help: "Total HTTP requests by route and status class",
			},
			[]string{"route", "status"}, // status: 2xx, 3xx, 4xx, 5xx
		),

		HTTPDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "itdept_http_duration_seconds",
				Help:    "HTTP request duration in seconds by route",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"route"},
		),

		HTTPErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "itdept_http_errors_total",
				Help: "Total HTTP errors by type and route",
			},
			[]string{"error_type", "route"}, // error_type: bad_request, rate_limit, storage, render
		),

		ThemeTogglesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "itdept_theme_toggles_total",
				Help: "Total theme toggles by resulting theme",
			},
			[]string{"theme"}, // theme: dark, light
		),

		CarouselMovesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "itdept_carousel_moves_total",
				Help: "Total news carousel moves by direction",
			},
			[]string{"direction"}, // direction: next, prev
		),

		CourseSearchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "itdept_course_searches_total",
				Help: "Total course catalog queries by outcome",
			},
			[]string{"outcome"}, // outcome: all, match, empty
		),

		SectionsRevealedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "itdept_sections_revealed_total",
				Help: "Total sections latched visible by region",
			},
			[]string{"region"},
		),

		VisibilityDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "itdept_visibility_dropped_total",
				Help: "Visibility writes dropped because the recorder queue was full",
			},
		),

		VisibilityQueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "itdept_visibility_queue_depth",
				Help: "Pending visibility writes waiting for the recorder",
			},
		),

		RateLimiterDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "itdept_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: visitor
		),

		RateLimiterKeys: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "itdept_rate_limiter_keys",
				Help: "Number of keys with an active token bucket",
			},
			[]string{"limiter_type"},
		),

		VisitorsStored: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "itdept_visitors_stored",
				Help: "Number of visitors currently persisted",
			},
		),

		VisitorsCleanedUp: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "itdept_visitors_cleaned_up_total",
				Help: "Total inactive visitors deleted by the cleanup job",
			},
		),

		SnapshotsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "itdept_snapshots_total",
				Help: "Total snapshot operations by operation and status",
			},
			[]string{"operation", "status"}, // operation: upload, restore; status: success, error, skipped
		),

		SnapshotDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "itdept_snapshot_duration_seconds",
				Help:    "Snapshot operation duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"operation"},
		),

		ContentItemsLoaded: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "itdept_content_items",
				Help: "Number of content items loaded per section",
			},
			[]string{"section"},
		),
	}
}

// RecordHTTPRequest records a completed request
func (m *Metrics) RecordHTTPRequest(route, status string, duration float64) {
	m.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	m.HTTPDurationSeconds.WithLabelValues(route).Observe(duration)
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, route string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, route).Inc()
}

// RecordThemeToggle records the theme a visitor switched to
func (m *Metrics) RecordThemeToggle(dark bool) {
	theme := "light"
	if dark {
		theme = "dark"
	}
	m.ThemeTogglesTotal.WithLabelValues(theme).Inc()
}

// RecordCarouselMove records a carousel step
func (m *Metrics) RecordCarouselMove(direction string) {
	m.CarouselMovesTotal.WithLabelValues(direction).Inc()
}

// RecordCourseSearch classifies a catalog query by its outcome
func (m *Metrics) RecordCourseSearch(query string, matches int) {
	outcome := "match"
	switch {
	case query == "":
		outcome = "all"
	case matches == 0:
		outcome = "empty"
	}
	m.CourseSearchesTotal.WithLabelValues(outcome).Inc()
}

// RecordSectionRevealed records a region latching visible for a visitor
func (m *Metrics) RecordSectionRevealed(region string) {
	m.SectionsRevealedTotal.WithLabelValues(region).Inc()
}

// RecordVisibilityDrop records a dropped visibility write
func (m *Metrics) RecordVisibilityDrop() {
	m.VisibilityDropped.Inc()
}

// SetVisibilityQueueDepth updates the recorder backlog gauge
func (m *Metrics) SetVisibilityQueueDepth(n int) {
	m.VisibilityQueueDepth.Set(float64(n))
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// SetRateLimiterKeys updates the active key gauge for a limiter
func (m *Metrics) SetRateLimiterKeys(limiterType string, n int) {
	m.RateLimiterKeys.WithLabelValues(limiterType).Set(float64(n))
}

// SetVisitorsStored updates the stored visitor gauge
func (m *Metrics) SetVisitorsStored(n int) {
	m.VisitorsStored.Set(float64(n))
}

// RecordVisitorsCleanedUp adds deleted visitors to the cleanup counter
func (m *Metrics) RecordVisitorsCleanedUp(n int64) {
	if n > 0 {
		m.VisitorsCleanedUp.Add(float64(n))
	}
}

// RecordSnapshot records a snapshot upload or restore
func (m *Metrics) RecordSnapshot(operation, status string, duration float64) {
	m.SnapshotsTotal.WithLabelValues(operation, status).Inc()
	m.SnapshotDuration.WithLabelValues(operation).Observe(duration)
}

// SetContentItems records how many items a content section holds
func (m *Metrics) SetContentItems(section string, n int) {
	m.ContentItemsLoaded.WithLabelValues(section).Set(float64(n))
}
