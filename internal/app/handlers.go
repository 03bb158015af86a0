package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyellow/itdept-site/internal/carousel"
	"github.com/garyellow/itdept-site/internal/catalog"
	"github.com/garyellow/itdept-site/internal/config"
	"github.com/garyellow/itdept-site/internal/ctxutil"
	apperrors "github.com/garyellow/itdept-site/internal/errors"
	"github.com/garyellow/itdept-site/internal/page"
	"github.com/garyellow/itdept-site/internal/sentry"
	"github.com/garyellow/itdept-site/internal/stringutil"
	"github.com/garyellow/itdept-site/internal/theme"
	"github.com/garyellow/itdept-site/internal/visibility"
)

const (
	// maxQueryRunes caps the query the catalog is filtered with. The search
	// box still echoes what was typed.
	maxQueryRunes = 128

	maxVisibilityBody    = 16 << 10
	maxVisibilityEntries = 64
)

type visibilityRequest struct {
	Entries []visibility.Entry `json:"entries"`
}

// wantsJSON reports whether the caller is the page script rather than a
// plain form post.
func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

func clampQuery(q string) string {
	return stringutil.TruncateRunes(q, maxQueryRunes)
}

func (a *Application) renderPage(c *gin.Context) {
	ctx := c.Request.Context()
	visitorID := ctxutil.MustGetVisitorID(ctx)
	a.touchVisitor(ctx, visitorID)

	raw := c.Query("q")
	st := page.State{
		Dark:      theme.Load(theme.NewCookieStore(c.Writer, c.Request, a.cfg.CookieSecure)),
		Query:     clampQuery(raw),
		Input:     raw,
		NewsIndex: a.newsIndex(ctx, visitorID),
		Visible:   a.visibleSections(ctx, visitorID),
	}

	view, err := page.Build(a.content, st, a.now().In(a.cfg.Location()))
	if err != nil {
		a.internalError(c, apperrors.NewWrapper("page", "build").Wrap(err, "page unavailable"))
		return
	}
	if st.Query != "" {
		a.metrics.RecordCourseSearch(st.Query, len(view.Courses))
	}

	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, page.TemplateName, view)
}

func (a *Application) toggleTheme(c *gin.Context) {
	store := theme.NewCookieStore(c.Writer, c.Request, a.cfg.CookieSecure)
	dark, err := theme.Toggle(store, theme.Load(store))
	if err != nil {
		// The visitor still sees the new theme for this response.
		a.logger.WithError(err).WarnContext(c.Request.Context(), "Failed to persist theme preference")
	}
	a.metrics.RecordThemeToggle(dark)

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"dark": dark})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (a *Application) moveNews(c *gin.Context) {
	direction := c.Param("direction")
	if direction != "next" && direction != "prev" {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown direction"})
		return
	}

	ctx := c.Request.Context()
	visitorID := ctxutil.MustGetVisitorID(ctx)

	// Validation guarantees at least one news item.
	base, err := carousel.New(len(a.content.News))
	if err != nil {
		a.internalError(c, apperrors.NewWrapper("news", "move").Wrap(err, "news unavailable"))
		return
	}
	step := func(current int) int {
		idx := base.At(current)
		if direction == "next" {
			return idx.Next().Pos()
		}
		return idx.Prev().Pos()
	}

	storeCtx, cancel := context.WithTimeout(ctx, config.StorageOperation)
	pos, err := a.db.UpdateNewsIndex(storeCtx, visitorID, step)
	cancel()
	if err != nil {
		a.logger.WithError(err).WarnContext(ctx, "Failed to persist news index, moving from the first item")
		pos = step(0)
	}
	a.metrics.RecordCarouselMove(direction)

	if wantsJSON(c) {
		c.JSON(http.StatusOK, newsResponse(page.NewsAt(a.content, base.At(pos))))
		return
	}
	c.Redirect(http.StatusSeeOther, "/#news")
}

func (a *Application) currentNews(c *gin.Context) {
	ctx := c.Request.Context()
	base, err := carousel.New(len(a.content.News))
	if err != nil {
		a.internalError(c, apperrors.NewWrapper("news", "current").Wrap(err, "news unavailable"))
		return
	}
	idx := base.At(a.newsIndex(ctx, ctxutil.MustGetVisitorID(ctx)))
	c.JSON(http.StatusOK, newsResponse(page.NewsAt(a.content, idx)))
}

func newsResponse(v page.NewsView) gin.H {
	return gin.H{
		"index": v.Index,
		"total": v.Total,
		"item":  v.Item,
	}
}

func (a *Application) searchCourses(c *gin.Context) {
	query := clampQuery(c.Query("q"))
	courses := catalog.Filter(a.content.Courses, query)
	a.metrics.RecordCourseSearch(query, len(courses))

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"count":   len(courses),
		"total":   len(a.content.Courses),
		"courses": courses,
	})
}

func (a *Application) reportVisibility(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxVisibilityBody)

	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		a.metrics.RecordHTTPError("invalid_input", c.FullPath())
		c.JSON(status, gin.H{"error": apperrors.ErrInvalidInput.Error()})
		return
	}

	if len(req.Entries) > maxVisibilityEntries {
		a.metrics.RecordHTTPError("invalid_input", c.FullPath())
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many entries"})
		return
	}

	ctx := c.Request.Context()
	visitorID := ctxutil.MustGetVisitorID(ctx)

	observer := a.tracker.Observe(visitorID, a.visibleSections(ctx, visitorID))
	defer observer.Close()

	added := observer.Notify(req.Entries)
	if added == nil {
		added = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"visible": observer.Visible(),
		"added":   added,
	})
}

// touchVisitor refreshes last_seen_at. Failure only delays cleanup.
func (a *Application) touchVisitor(ctx context.Context, visitorID string) {
	storeCtx, cancel := context.WithTimeout(ctx, config.StorageOperation)
	defer cancel()
	if err := a.db.TouchVisitor(storeCtx, visitorID); err != nil {
		a.logger.WithError(err).WarnContext(ctx, "Failed to touch visitor")
	}
}

// newsIndex returns the stored carousel index, or 0 when storage fails.
func (a *Application) newsIndex(ctx context.Context, visitorID string) int {
	storeCtx, cancel := context.WithTimeout(ctx, config.StorageOperation)
	defer cancel()
	idx, err := a.db.GetNewsIndex(storeCtx, visitorID)
	if err != nil {
		a.logger.WithError(err).WarnContext(ctx, "Failed to load news index, showing the first item")
		return 0
	}
	return idx
}

// visibleSections returns the stored seen regions, or none when storage fails.
func (a *Application) visibleSections(ctx context.Context, visitorID string) []string {
	storeCtx, cancel := context.WithTimeout(ctx, config.StorageOperation)
	defer cancel()
	regions, err := a.db.GetVisibleSections(storeCtx, visitorID)
	if err != nil {
		a.logger.WithError(err).WarnContext(ctx, "Failed to load visible sections")
		return nil
	}
	return regions
}

// internalError reports err and answers 500 with its user message.
func (a *Application) internalError(c *gin.Context, err error) {
	route := c.FullPath()
	a.logger.WithError(err).WithField("http_route", route).ErrorContext(c.Request.Context(), "Request failed")
	a.metrics.RecordHTTPError("internal", route)
	sentry.CaptureRequestError(c.Request.Context(), c.Request, route, err)
	_ = c.Error(err)

	msg := apperrors.GetUserMessage(err)
	if wantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msg})
		return
	}
	c.Abort()
	c.String(http.StatusInternalServerError, msg)
}
