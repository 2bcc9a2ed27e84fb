package models

// MSummaryStats holds the derived statistics of one series.
// YTDChange and YOYChange are nil when no reference observation exists.
type MSummaryStats struct {
	Current   float64  `json:"current"`
	YTDChange *float64 `json:"ytd_change"`
	YOYChange *float64 `json:"yoy_change"`
	High      float64  `json:"high"`
	Low       float64  `json:"low"`
	Average   float64  `json:"average"`
}

// MSummaryRow is one rendered line of a summary table.
type MSummaryRow struct {
	Statistic string `json:"Statistic"`
	Value     string `json:"Value"`
}
