package analysis

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"econ-dashboard/src/analysis/core"
	"econ-dashboard/src/helpers"
	"econ-dashboard/src/models"
)

// NotAvailable marks a comparison without a reference observation.
const NotAvailable = "N/A"

// Row labels of the summary table, in display order.
const (
	RowCurrent = "Current Value"
	RowYTD     = "Year-to-Date Change"
	RowYOY     = "Year-over-Year Change"
	RowHigh    = "All-Time High"
	RowLow     = "All-Time Low"
	RowAverage = "Average (All Time)"
)

// -----------------------------------------------------------------------------

// ComputeSummary derives the six statistics of a series as seen at now.
// Missing observations are ignored throughout; a series without any
// observation is an EmptySeriesError.
func ComputeSummary(series *models.MSeries, now time.Time) (models.MSummaryStats, error) {
	name := ""
	if series != nil {
		name = series.Name
	}

	last := -1
	for i := series.Len() - 1; i >= 0; i-- {
		if !models.IsMissing(series.Values[i]) {
			last = i
			break
		}
	}
	if last < 0 {
		return models.MSummaryStats{}, helpers.NewEmptySeriesError(name)
	}

	values := core.FiniteValues(series.Values)
	low, high, _ := core.MinMax(values)
	mean, _ := core.CalculateMeanStd(values)

	stats := models.MSummaryStats{
		Current: series.Values[last],
		High:    high,
		Low:     low,
		Average: mean,
	}

	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	if ref, ok := firstOnOrAfter(series, yearStart); ok {
		change := stats.Current - ref
		stats.YTDChange = &change
	}

	if ref, ok := lastOnOrBefore(series, now.AddDate(-1, 0, 0)); ok {
		change := stats.Current - ref
		stats.YOYChange = &change
	}

	return stats, nil
}

// -----------------------------------------------------------------------------

func firstOnOrAfter(series *models.MSeries, t time.Time) (float64, bool) {
	for i, d := range series.Dates {
		if !d.Before(t) && !models.IsMissing(series.Values[i]) {
			return series.Values[i], true
		}
	}
	return 0, false
}

func lastOnOrBefore(series *models.MSeries, t time.Time) (float64, bool) {
	for i := series.Len() - 1; i >= 0; i-- {
		if !series.Dates[i].After(t) && !models.IsMissing(series.Values[i]) {
			return series.Values[i], true
		}
	}
	return 0, false
}

// -----------------------------------------------------------------------------

// FormatTable renders the statistics with two decimals.
func FormatTable(stats models.MSummaryStats) []models.MSummaryRow {
	return []models.MSummaryRow{
		{Statistic: RowCurrent, Value: FormatValue(stats.Current)},
		{Statistic: RowYTD, Value: formatOptional(stats.YTDChange)},
		{Statistic: RowYOY, Value: formatOptional(stats.YOYChange)},
		{Statistic: RowHigh, Value: FormatValue(stats.High)},
		{Statistic: RowLow, Value: FormatValue(stats.Low)},
		{Statistic: RowAverage, Value: FormatValue(stats.Average)},
	}
}

// FormatValue renders v with two decimals, or N/A when it is not finite.
func FormatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatOptional(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return FormatValue(*v)
}

// EmptyTable is the table shown when the window holds no observation.
func EmptyTable() []models.MSummaryRow {
	rows := FormatTable(models.MSummaryStats{})
	for i := range rows {
		rows[i].Value = NotAvailable
	}
	return rows
}
