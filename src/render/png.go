package render

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"econ-dashboard/src/models"
)

const (
	DefaultWidth  = 1024
	dateLayout    = "2006-01-02"
	minChartWidth = 200
)

var ErrNoData = errors.New("render: chart has no data points")

var namedColors = map[string]drawing.Color{
	"black": drawing.ColorBlack,
	"white": drawing.ColorWhite,
	"red":   drawing.ColorRed,
	"green": drawing.ColorGreen,
	"blue":  drawing.ColorBlue,
}

// -----------------------------------------------------------------------------

// ParseColor accepts the colour names used by themes and #RRGGBB values.
// Anything else renders black.
func ParseColor(raw string) drawing.Color {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if c, ok := namedColors[raw]; ok {
		return c
	}
	if strings.HasPrefix(raw, "#") && (len(raw) == 7 || len(raw) == 4) {
		return drawing.ColorFromHex(strings.TrimPrefix(raw, "#"))
	}
	return drawing.ColorBlack
}

// -----------------------------------------------------------------------------

// PNG draws a chart spec as a line chart. Width falls back to DefaultWidth and
// height to the spec layout height.
func PNG(w io.Writer, spec models.MChartSpec, width, height int) error {
	if width < minChartWidth {
		width = DefaultWidth
	}
	if height <= 0 {
		height = spec.Layout.Height
	}

	series := make([]chart.Series, 0, len(spec.Traces))
	for _, trace := range spec.Traces {
		ts, err := timeSeries(trace)
		if err != nil {
			return err
		}
		if len(ts.XValues) > 0 {
			series = append(series, ts)
		}
	}
	if len(series) == 0 {
		return ErrNoData
	}

	ch := chart.Chart{
		Title:      spec.Layout.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: spec.Layout.XAxisTitle, ValueFormatter: chart.TimeValueFormatterWithFormat(dateLayout)},
		YAxis:      chart.YAxis{Name: spec.Layout.YAxisTitle},
		Series:     series,
	}
	if spec.Layout.ShowLegend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render %s: %w", spec.ID, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// timeSeries converts a trace, skipping missing points. A single point is
// stretched over one day so the axis range is not empty.
func timeSeries(trace models.MTrace) (chart.TimeSeries, error) {
	ts := chart.TimeSeries{
		Name: trace.Name,
		Style: chart.Style{
			StrokeColor: ParseColor(trace.Color),
			StrokeWidth: 2,
		},
	}

	for i, y := range trace.Y {
		if y == nil || i >= len(trace.X) {
			continue
		}
		x, err := time.Parse(dateLayout, trace.X[i])
		if err != nil {
			return ts, fmt.Errorf("trace %s: bad date %q: %w", trace.Name, trace.X[i], err)
		}
		ts.XValues = append(ts.XValues, x)
		ts.YValues = append(ts.YValues, *y)
	}

	if len(ts.XValues) == 1 {
		ts.XValues = append(ts.XValues, ts.XValues[0].Add(24*time.Hour))
		ts.YValues = append(ts.YValues, ts.YValues[0])
	}
	return ts, nil
}
