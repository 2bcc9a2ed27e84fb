package dashboard

import (
	"fmt"
	"hash/fnv"

	"econ-dashboard/src/models"
)

const (
	chartDateLayout = "2006-01-02"
	indicatorHeight = 400
	combinedHeight  = 500
	combinedTitle   = "Combined Economic Indicators (Normalized)"
	combinedYAxis   = "Normalized Scale (0-100)"
	fallbackColor   = "black"
)

// -----------------------------------------------------------------------------

// ColorFor picks the theme colour of an indicator, then a palette entry chosen
// by id hash, then the theme default.
func ColorFor(theme models.MThemeConfig, id string) string {
	if c, ok := theme.Colors[id]; ok && c != "" {
		return c
	}
	if len(theme.Palette) > 0 {
		h := fnv.New32a()
		h.Write([]byte(id))
		return theme.Palette[h.Sum32()%uint32(len(theme.Palette))]
	}
	if theme.DefaultColor != "" {
		return theme.DefaultColor
	}
	return fallbackColor
}

// -----------------------------------------------------------------------------

func newTrace(name string, series *models.MSeries, color string) models.MTrace {
	trace := models.MTrace{
		Name:  name,
		X:     make([]string, series.Len()),
		Y:     make([]*float64, series.Len()),
		Color: color,
	}
	for i := range series.Values {
		trace.X[i] = series.Dates[i].Format(chartDateLayout)
		if !models.IsMissing(series.Values[i]) {
			v := series.Values[i]
			trace.Y[i] = &v
		}
	}
	return trace
}

// -----------------------------------------------------------------------------

// IndicatorChart builds the single-indicator line chart.
func IndicatorChart(ind models.MIndicator, series *models.MSeries, theme models.MThemeConfig) models.MChartSpec {
	title, yLabel := ind.Title, ind.YLabel
	if title == "" {
		title = ind.ID
	}
	if yLabel == "" {
		yLabel = ind.ID
	}

	trace := newTrace(yLabel, series, ColorFor(theme, ind.ID))
	trace.HoverTemplate = fmt.Sprintf("Date: %%{x}<br>%s: %%{y:.2f}<extra></extra>", yLabel)

	return models.MChartSpec{
		ID:     ind.ID,
		Traces: []models.MTrace{trace},
		Layout: models.MLayout{
			Title:      title,
			Template:   theme.Template,
			HoverMode:  "x unified",
			Height:     indicatorHeight,
			XAxisTitle: "Date",
			YAxisTitle: yLabel,
			ShowLegend: true,
		},
	}
}

// -----------------------------------------------------------------------------

// CombinedChart overlays normalized series, one trace per indicator.
func CombinedChart(traces []models.MTrace, theme models.MThemeConfig) models.MChartSpec {
	if traces == nil {
		traces = []models.MTrace{}
	}
	return models.MChartSpec{
		ID:     models.CombinedChartID,
		Traces: traces,
		Layout: models.MLayout{
			Title:      combinedTitle,
			Template:   theme.Template,
			HoverMode:  "x unified",
			Height:     combinedHeight,
			XAxisTitle: "Date",
			YAxisTitle: combinedYAxis,
			ShowLegend: true,
		},
	}
}
