package app

import (
	"context"
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garyellow/itdept-site/internal/config"
	"github.com/garyellow/itdept-site/internal/page"
)

// newRouter builds the gin engine. Probes, metrics and static assets skip
// the visitor cookie. Routes that change visitor state are rate limited per
// visitor. Course search runs on every keystroke and only reads the fixed
// catalog, so it is not.
func (a *Application) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(requestIDMiddleware())
	router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(a.logger, a.metrics))
	router.SetHTMLTemplate(a.tmpl)

	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)
	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsAuthEnabled, a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	static := router.Group("/static", func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=3600")
		c.Next()
	})
	static.StaticFS("/", http.FS(page.Static()))

	site := router.Group("/", visitorMiddleware(a.cfg.CookieSecure))
	site.GET("/", a.renderPage)
	site.HEAD("/", a.renderPage)
	site.GET("/api/courses", a.searchCourses)

	limited := site.Group("", rateLimitMiddleware(a.limiter))
	limited.POST("/theme", a.toggleTheme)
	limited.POST("/news/:direction", a.moveNews)

	api := limited.Group("/api")
	api.GET("/news", a.currentNews)
	api.POST("/visibility", a.reportVisibility)

	return router
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), config.ReadinessCheckTimeout)
	defer cancel()

	status := a.readiness.Status(ctx)
	if !status.Ready {
		a.logger.WithField("reason", status.Reason).
			WithField("checks", status.Checks).
			Warn("Readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": status.Reason,
			"checks": status.Checks,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "ready",
		"uptime_seconds": status.UptimeSeconds,
		"checks":         status.Checks,
	})
}
