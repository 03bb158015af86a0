package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/garyellow/itdept-site/internal/config"
	"github.com/garyellow/itdept-site/internal/sentry"
)

// startBackgroundJobs starts the periodic jobs on g. Every job returns nil
// when ctx is canceled so one job ending never stops the others.
func (a *Application) startBackgroundJobs(ctx context.Context, g *errgroup.Group) {
	g.Go(func() error {
		a.visitorCleanup(ctx)
		return nil
	})
	g.Go(func() error {
		a.updateGauges(ctx)
		return nil
	})
	if a.snapshots != nil {
		g.Go(func() error {
			a.snapshotLoop(ctx)
			return nil
		})
	}
}

// nextDailyRun returns the next time at hour:00 in loc strictly after now.
func nextDailyRun(now time.Time, hour int, loc *time.Location) time.Time {
	now = now.In(loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// visitorCleanup deletes inactive visitors daily at the configured local hour.
func (a *Application) visitorCleanup(ctx context.Context) {
	a.logger.Debug("Visitor cleanup job started")
	defer a.logger.Debug("Visitor cleanup job stopped")

	loc := a.cfg.Location()
	for {
		next := nextDailyRun(a.now(), a.cfg.CleanupHour, loc)
		a.logger.WithField("next_run", next.Format(time.RFC3339)).
			Info("Scheduled next visitor cleanup")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			a.runVisitorCleanup(ctx)
		}
	}
}

func (a *Application) runVisitorCleanup(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, config.CleanupTimeout)
	defer cancel()

	start := time.Now()
	deleted, err := a.db.DeleteInactiveVisitors(ctx, a.cfg.VisitorTTL)
	if err != nil {
		a.logger.WithError(err).Error("Visitor cleanup failed")
		sentry.CaptureException(err)
		return
	}
	a.metrics.RecordVisitorsCleanedUp(deleted)
	a.logger.WithField("deleted", deleted).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("Visitor cleanup completed")
}

// snapshotLoop uploads a database snapshot every SnapshotInterval.
func (a *Application) snapshotLoop(ctx context.Context) {
	a.logger.Debug("Snapshot job started")
	defer a.logger.Debug("Snapshot job stopped")

	ticker := time.NewTicker(a.cfg.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.uploadSnapshot(ctx)
		}
	}
}

func (a *Application) uploadSnapshot(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, config.SnapshotTimeout)
	defer cancel()

	etag, err := a.snapshots.Upload(ctx, a.db)
	if err != nil {
		a.logger.WithError(err).Error("Snapshot upload failed")
		sentry.CaptureException(err)
		return
	}
	a.logger.WithField("etag", etag).Info("Snapshot uploaded")
}

// updateGauges refreshes gauges that are too expensive to keep exact.
func (a *Application) updateGauges(ctx context.Context) {
	a.recordGauges(ctx)

	ticker := time.NewTicker(config.MetricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.recordGauges(ctx)
		}
	}
}

func (a *Application) recordGauges(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, config.StorageOperation)
	defer cancel()

	n, err := a.db.CountVisitors(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("Failed to count visitors")
		return
	}
	a.metrics.SetVisitorsStored(n)
}
