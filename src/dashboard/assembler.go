package dashboard

import (
	"context"
	"sort"
	"time"

	"econ-dashboard/src/analysis"
	"econ-dashboard/src/helpers"
	"econ-dashboard/src/interfaces"
	"econ-dashboard/src/logger"
	"econ-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// Assembler turns a dashboard query into chart and table payloads.
// -----------------------------------------------------------------------------

type Assembler struct {
	Config   *models.MConfig
	Series   interfaces.ISeriesProvider
	Catalog  interfaces.IIndicatorCatalog
	Analysis *analysis.AnalysisFacade
	Logger   *logger.Logger
	now      func() time.Time
}

// -----------------------------------------------------------------------------

func NewAssembler(cfg *models.MConfig, series interfaces.ISeriesProvider, catalog interfaces.IIndicatorCatalog, log *logger.Logger) *Assembler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Assembler{
		Config:   cfg,
		Series:   series,
		Catalog:  catalog,
		Analysis: analysis.NewAnalysisFacade(cfg, log),
		Logger:   log,
		now:      time.Now,
	}
}

// SetClock replaces the reference time of YTD/YOY comparisons.
func (a *Assembler) SetClock(now func() time.Time) {
	a.now = now
}

// -----------------------------------------------------------------------------

// Theme resolves a theme name, falling back to the configured default.
func (a *Assembler) Theme(name string) (models.MThemeConfig, error) {
	if name == "" {
		name = a.Config.Dashboard.DefaultTheme
	}
	theme, ok := a.Config.Themes[name]
	if !ok {
		return models.MThemeConfig{}, helpers.NewValidationError("unknown theme %q", name)
	}
	return theme, nil
}

// -----------------------------------------------------------------------------

// Selection returns the identifiers a query asks for, in catalog order.
// An empty selection map selects every registered indicator; otherwise only
// ids flagged true are kept. Ids unknown to the catalog follow, sorted.
func (a *Assembler) Selection(query models.MDashboardQuery) []string {
	catalog := a.Catalog.List()
	if len(query.Indicators) == 0 {
		ids := make([]string, len(catalog))
		for i, ind := range catalog {
			ids[i] = ind.ID
		}
		return ids
	}

	ids := make([]string, 0, len(query.Indicators))
	known := make(map[string]bool, len(catalog))
	for _, ind := range catalog {
		known[ind.ID] = true
		if query.Indicators[ind.ID] {
			ids = append(ids, ind.ID)
		}
	}

	var extra []string
	for id, selected := range query.Indicators {
		if selected && !known[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(ids, extra...)
}

// -----------------------------------------------------------------------------

// Build resolves, filters and summarizes every selected indicator.
// Unavailable indicators are listed and left out of every payload group;
// the build fails only when nothing selected is available.
func (a *Assembler) Build(ctx context.Context, query models.MDashboardQuery) (*models.MDashboardPayload, error) {
	start, end, err := analysis.ParseDateRange(query.DateRange)
	if err != nil {
		return nil, err
	}
	theme, err := a.Theme(query.Theme)
	if err != nil {
		return nil, err
	}
	if query.Smoothing < 0 {
		return nil, helpers.NewValidationError("smoothing window must be positive, got %d", query.Smoothing)
	}

	now := a.now()
	ids := a.Selection(query)
	resolved := a.resolve(ctx, ids)

	payload := &models.MDashboardPayload{
		Plots:       make(map[string]models.MChartSpec, len(ids)),
		Tables:      make(map[string][]models.MSummaryRow, len(ids)),
		Unavailable: []string{},
		Timestamp:   now.Unix(),
	}
	var combined []models.MTrace

	for _, id := range ids {
		series := resolved[id]
		if series == nil {
			payload.Unavailable = append(payload.Unavailable, id)
			continue
		}

		view, err := a.Analysis.Analyze(id, series, start, end, query.Smoothing, now)
		if err != nil {
			a.Logger.Error("Analysis failed for %s: %v", id, err)
			payload.Unavailable = append(payload.Unavailable, id)
			continue
		}

		ind := a.indicator(id)
		payload.Plots[id] = IndicatorChart(ind, view.Charted, theme)
		if view.Summary != nil {
			payload.Tables[id] = analysis.FormatTable(*view.Summary)
		} else {
			payload.Tables[id] = analysis.EmptyTable()
		}

		label := ind.Label
		if label == "" {
			label = id
		}
		combined = append(combined, newTrace(label, view.Normalized, ColorFor(theme, id)))
	}

	if len(ids) > 0 && len(payload.Plots) == 0 {
		return nil, helpers.NewFetchError(nil, "none of the %d selected indicators is available", len(ids))
	}
	if len(payload.Unavailable) > 0 {
		a.Logger.Warning("Dashboard built without %v", payload.Unavailable)
	}

	payload.CombinedPlot = CombinedChart(combined, theme)
	return payload, nil
}

// -----------------------------------------------------------------------------

func (a *Assembler) resolve(ctx context.Context, ids []string) map[string]*models.MSeries {
	out := make(map[string]*models.MSeries, len(ids))
	var remote []string

	for _, id := range ids {
		if ind, ok := a.Catalog.Lookup(id); ok && ind.Origin == models.OriginCustom {
			series, _ := a.Catalog.CustomSeries(id)
			out[id] = series
			continue
		}
		remote = append(remote, id)
	}

	if len(remote) > 0 {
		for id, series := range a.Series.GetAll(ctx, remote) {
			out[id] = series
		}
	}
	return out
}

// -----------------------------------------------------------------------------

func (a *Assembler) indicator(id string) models.MIndicator {
	if ind, ok := a.Catalog.Lookup(id); ok {
		return ind
	}
	return models.MIndicator{ID: id, Description: id, Title: id, YLabel: id, Label: id}
}
