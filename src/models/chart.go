package models

// CombinedChartID identifies the normalized chart of every selected indicator.
const CombinedChartID = "combined"

// MChartSpec is a renderer-agnostic chart description.
type MChartSpec struct {
	ID     string   `json:"id"`
	Traces []MTrace `json:"data"`
	Layout MLayout  `json:"layout"`
}

// MTrace is one line of a chart. Y holds nil for missing observations.
type MTrace struct {
	Name          string     `json:"name"`
	X             []string   `json:"x"`
	Y             []*float64 `json:"y"`
	Color         string     `json:"color"`
	HoverTemplate string     `json:"hovertemplate,omitempty"`
}

type MLayout struct {
	Title      string `json:"title"`
	Template   string `json:"template"`
	HoverMode  string `json:"hovermode"`
	Height     int    `json:"height"`
	XAxisTitle string `json:"xaxis_title"`
	YAxisTitle string `json:"yaxis_title"`
	ShowLegend bool   `json:"showlegend"`
}
