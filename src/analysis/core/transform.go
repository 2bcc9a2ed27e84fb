package core

import (
	"time"

	"econ-dashboard/src/models"
)

// Transforms never modify their input; each returns a new series.

// -----------------------------------------------------------------------------

// FilterByDate keeps observations with start <= date <= end. A zero bound is
// open. nil input yields nil so deselected indicators pass through untouched.
func FilterByDate(series *models.MSeries, start, end time.Time) *models.MSeries {
	if series == nil {
		return nil
	}

	out := models.NewSeries(series.Name)
	for i, d := range series.Dates {
		if !start.IsZero() && d.Before(start) {
			continue
		}
		if !end.IsZero() && d.After(end) {
			continue
		}
		out.Append(d, series.Values[i])
	}
	return out
}

// -----------------------------------------------------------------------------

// Normalize drops missing observations and min-max scales the rest to [0, 100].
// When nothing remains, or every remaining value is equal, the remaining
// observations are returned unscaled.
func Normalize(series *models.MSeries) *models.MSeries {
	if series == nil {
		return nil
	}

	kept := models.NewSeries(series.Name)
	for i, v := range series.Values {
		if !models.IsMissing(v) {
			kept.Append(series.Dates[i], v)
		}
	}

	low, high, ok := MinMax(kept.Values)
	if !ok || high == low {
		return kept
	}

	span := high - low
	for i, v := range kept.Values {
		kept.Values[i] = 100 * (v - low) / span
	}
	return kept
}

// -----------------------------------------------------------------------------

// Smooth applies a centered moving average. Edge windows shrink instead of
// padding, and missing values are skipped, so a window with at least one
// observation always yields a value.
func Smooth(series *models.MSeries, window int) *models.MSeries {
	if series == nil {
		return nil
	}
	out := series.Copy()
	if window <= 1 {
		return out
	}

	n := series.Len()
	before := window / 2
	after := (window - 1) / 2
	for i := 0; i < n; i++ {
		lo, hi := i-before, i+after
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}

		sum, count := 0.0, 0
		for j := lo; j <= hi; j++ {
			if v := series.Values[j]; !models.IsMissing(v) {
				sum += v
				count++
			}
		}
		if count == 0 {
			out.Values[i] = models.Missing()
			continue
		}
		out.Values[i] = sum / float64(count)
	}
	return out
}
