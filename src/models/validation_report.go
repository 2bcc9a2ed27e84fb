package models

import "time"

// Frequency labels produced by the loader.
const (
	FrequencyMonthly   = "Monthly"
	FrequencyQuarterly = "Quarterly"
	FrequencyUnknown   = "Unknown"
)

// MValidationReport is the per-load diagnostic of a dataset.
type MValidationReport struct {
	Filename      string         `json:"filename"`
	TotalRows     int            `json:"total_rows"`
	Columns       []string       `json:"columns"`
	ValueColumn   string         `json:"value_column"`
	MissingValues map[string]int `json:"missing_values"`
	StartDate     time.Time      `json:"start_date"`
	EndDate       time.Time      `json:"end_date"`
	Frequency     string         `json:"frequency"`
	ModalGapDays  int            `json:"modal_gap_days"`
	SpanYears     float64        `json:"span_years"`
	MinValue      *float64       `json:"min_value"`
	MaxValue      *float64       `json:"max_value"`
}
