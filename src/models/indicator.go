package models

// Origin tags where an indicator comes from.
type Origin string

const (
	OriginBuiltin Origin = "builtin"
	OriginCustom  Origin = "custom"
)

// MIndicator is a named economic time series known to the registry.
type MIndicator struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Origin      Origin `json:"origin"`
	Title       string `json:"title,omitempty"`   // chart title
	YLabel      string `json:"y_label,omitempty"` // y axis label
	Label       string `json:"label,omitempty"`   // legend name in the combined chart
}

// MSeriesInfo is the metadata the remote origin returns for a series.
type MSeriesInfo struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Frequency         string `json:"frequency"`
	Units             string `json:"units"`
	Notes             string `json:"notes"`
	ObservationStart  string `json:"observation_start,omitempty"`
	ObservationEnd    string `json:"observation_end,omitempty"`
	LastUpdated       string `json:"last_updated,omitempty"`
	SeasonalAdjusted  string `json:"seasonal_adjustment,omitempty"`
	PopularityRanking int    `json:"popularity,omitempty"`
}
