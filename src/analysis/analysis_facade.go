package analysis

import (
	"errors"
	"strings"
	"time"

	"econ-dashboard/src/analysis/core"
	"econ-dashboard/src/helpers"
	"econ-dashboard/src/logger"
	"econ-dashboard/src/models"
)

const queryDateLayout = "2006-01-02"

// IndicatorView holds the derived views of one indicator for a request.
// Summary is nil when the window holds no observation.
type IndicatorView struct {
	ID         string
	Filtered   *models.MSeries
	Charted    *models.MSeries
	Normalized *models.MSeries
	Summary    *models.MSummaryStats
}

// -----------------------------------------------------------------------------

type AnalysisFacade struct {
	Config *models.MConfig
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAnalysisFacade(cfg *models.MConfig, log *logger.Logger) *AnalysisFacade {
	if log == nil {
		log = logger.NewNop()
	}
	return &AnalysisFacade{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Analyze filters a series to [start, end], smooths the charted copy when
// smoothing > 1, normalizes it for the combined chart and computes the
// summary on the unsmoothed window.
func (a *AnalysisFacade) Analyze(id string, series *models.MSeries, start, end time.Time, smoothing int, now time.Time) (IndicatorView, error) {
	view := IndicatorView{ID: id}
	if series == nil {
		return view, helpers.NewFetchError(nil, "no data for %s", id)
	}

	view.Filtered = core.FilterByDate(series, start, end)
	view.Charted = view.Filtered
	if smoothing > 1 {
		view.Charted = core.Smooth(view.Filtered, smoothing)
	}
	view.Normalized = core.Normalize(view.Charted)

	stats, err := ComputeSummary(view.Filtered, now)
	switch {
	case err == nil:
		view.Summary = &stats
	case errors.Is(err, helpers.ErrEmptySeries):
		a.Logger.Debug("No observations for %s in window", id)
	default:
		return view, err
	}
	return view, nil
}

// -----------------------------------------------------------------------------

// ParseDateRange converts query bounds. Empty bounds stay open (zero time).
// The end bound is the last instant of its day so intraday stamps on the
// end date stay inside the window.
func ParseDateRange(r models.MDateRange) (time.Time, time.Time, error) {
	start, err := parseBound(r.Start)
	if err != nil {
		return time.Time{}, time.Time{}, helpers.NewValidationError("invalid start date %q", r.Start)
	}
	end, err := parseBound(r.End)
	if err != nil {
		return time.Time{}, time.Time{}, helpers.NewValidationError("invalid end date %q", r.End)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return time.Time{}, time.Time{}, helpers.NewValidationError("end date %s is before start date %s", r.End, r.Start)
	}
	if !end.IsZero() {
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return start, end, nil
}

func parseBound(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if len(raw) > len(queryDateLayout) {
		raw = raw[:len(queryDateLayout)]
	}
	return time.Parse(queryDateLayout, raw)
}
