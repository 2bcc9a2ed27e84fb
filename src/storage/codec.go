package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"econ-dashboard/src/models"
)

// observation is the stored form of one point. A missing value is null.
type observation struct {
	Date  time.Time `json:"d"`
	Value *float64  `json:"v"`
}

// -----------------------------------------------------------------------------

func encodeSeries(series *models.MSeries) (string, error) {
	points := make([]observation, series.Len())
	for i := range series.Values {
		points[i].Date = series.Dates[i].UTC()
		if !models.IsMissing(series.Values[i]) {
			v := series.Values[i]
			points[i].Value = &v
		}
	}
	data, err := json.Marshal(points)
	if err != nil {
		return "", fmt.Errorf("encode series %s: %w", series.Name, err)
	}
	return string(data), nil
}

// -----------------------------------------------------------------------------

func decodeSeries(name, data string) (*models.MSeries, error) {
	var points []observation
	if err := json.Unmarshal([]byte(data), &points); err != nil {
		return nil, fmt.Errorf("decode series %s: %w", name, err)
	}

	series := models.NewSeries(name)
	for _, p := range points {
		if p.Value == nil {
			series.Append(p.Date.UTC(), models.Missing())
			continue
		}
		series.Append(p.Date.UTC(), *p.Value)
	}
	return series, nil
}
