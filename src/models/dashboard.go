package models

// MDateRange is an inclusive date window, dates formatted YYYY-MM-DD.
// Empty bounds are open.
type MDateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// MDashboardQuery is the request accepted by the dashboard boundary.
type MDashboardQuery struct {
	DateRange  MDateRange      `json:"dateRange"`
	Indicators map[string]bool `json:"indicators"`
	Theme      string          `json:"theme,omitempty"`
	Smoothing  int             `json:"smoothing,omitempty"`
}

// MDashboardPayload groups every chart and table keyed by indicator id.
type MDashboardPayload struct {
	Plots        map[string]MChartSpec    `json:"plots"`
	Tables       map[string][]MSummaryRow `json:"tables"`
	CombinedPlot MChartSpec               `json:"combined_plot"`
	Unavailable  []string                 `json:"unavailable"`
	Timestamp    int64                    `json:"timestamp"`
}
