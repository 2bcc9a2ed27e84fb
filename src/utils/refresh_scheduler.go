package utils

import (
	"context"
	"sync"
	"time"

	"econ-dashboard/src/logger"
	"econ-dashboard/src/models"
)

const defaultTickInterval = 10 * time.Minute

// Refresher re-fetches one series regardless of cache freshness.
type Refresher interface {
	Refresh(ctx context.Context, seriesID string) (*models.MSeries, error)
}

// -----------------------------------------------------------------------------
// RefreshScheduler warms the cache once per business day after a UTC hour,
// so the first dashboard request of the day does not wait on the origin.
// -----------------------------------------------------------------------------

type RefreshScheduler struct {
	Calendar  *ReleaseCalendar
	Refresher Refresher
	SeriesIDs []string
	Hour      int
	Interval  time.Duration
	Logger    *logger.Logger

	now     func() time.Time
	mu      sync.Mutex
	lastRun string
}

// -----------------------------------------------------------------------------

func NewRefreshScheduler(cfg models.MRefreshConfig, refresher Refresher, seriesIDs []string, l *logger.Logger) *RefreshScheduler {
	if l == nil {
		l = logger.NewNop()
	}
	return &RefreshScheduler{
		Calendar:  NewReleaseCalendar(cfg.Calendar, l),
		Refresher: refresher,
		SeriesIDs: append([]string(nil), seriesIDs...),
		Hour:      cfg.Hour,
		Interval:  defaultTickInterval,
		Logger:    l,
		now:       time.Now,
	}
}

// SetClock replaces the time source.
func (rs *RefreshScheduler) SetClock(now func() time.Time) {
	rs.now = now
}

// -----------------------------------------------------------------------------

// Due reports whether the daily refresh should run at t.
func (rs *RefreshScheduler) Due(t time.Time) bool {
	t = t.UTC()
	rs.mu.Lock()
	ran := rs.lastRun == t.Format("2006-01-02")
	rs.mu.Unlock()

	if ran || t.Hour() < rs.Hour {
		return false
	}
	return rs.Calendar.IsBusinessDay(t)
}

// -----------------------------------------------------------------------------

// RunOnce refreshes every series and returns how many failed. Failures keep
// the previous cache entry.
func (rs *RefreshScheduler) RunOnce(ctx context.Context) int {
	day := rs.now().UTC().Format("2006-01-02")
	rs.mu.Lock()
	rs.lastRun = day
	rs.mu.Unlock()

	failed := 0
	for _, id := range rs.SeriesIDs {
		if ctx.Err() != nil {
			return failed + 1
		}
		if _, err := rs.Refresher.Refresh(ctx, id); err != nil {
			failed++
			rs.Logger.Warning("RefreshScheduler: %s not refreshed: %v", id, err)
		}
	}

	rs.Logger.Info("RefreshScheduler: refreshed %d/%d series for %s",
		len(rs.SeriesIDs)-failed, len(rs.SeriesIDs), day)
	return failed
}

// -----------------------------------------------------------------------------

// Run checks Due on every tick until ctx is cancelled.
func (rs *RefreshScheduler) Run(ctx context.Context) {
	interval := rs.Interval
	if interval <= 0 {
		interval = defaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	rs.Logger.Info("RefreshScheduler: %d series after %02d:00 UTC on %s business days",
		len(rs.SeriesIDs), rs.Hour, rs.Calendar.MIC)

	for {
		if rs.Due(rs.now()) {
			rs.RunOnce(ctx)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
