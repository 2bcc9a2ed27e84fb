package models

import (
	"math"
	"time"
)

// MSeries is a date-indexed single-column series.
// Dates are strictly increasing; a missing observation is stored as NaN.
type MSeries struct {
	Name   string      `json:"name"`
	Dates  []time.Time `json:"dates"`
	Values []float64   `json:"values"`
}

// -----------------------------------------------------------------------------

// NewSeries builds an empty series with the given value column name.
func NewSeries(name string) *MSeries {
	return &MSeries{
		Name:   name,
		Dates:  []time.Time{},
		Values: []float64{},
	}
}

// -----------------------------------------------------------------------------

// Len returns the number of observations, missing ones included.
func (s *MSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Values)
}

// -----------------------------------------------------------------------------

// Append adds one observation at the end of the series.
func (s *MSeries) Append(date time.Time, value float64) {
	s.Dates = append(s.Dates, date)
	s.Values = append(s.Values, value)
}

// -----------------------------------------------------------------------------

// Copy creates a deep copy of the series.
func (s *MSeries) Copy() *MSeries {
	dates := make([]time.Time, len(s.Dates))
	copy(dates, s.Dates)

	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	return &MSeries{
		Name:   s.Name,
		Dates:  dates,
		Values: values,
	}
}

// -----------------------------------------------------------------------------

// Equal reports whether both series carry the same dates and values.
// Missing markers compare equal to each other.
func (s *MSeries) Equal(other *MSeries) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.Dates) != len(other.Dates) || len(s.Values) != len(other.Values) {
		return false
	}
	for i := range s.Dates {
		if !s.Dates[i].Equal(other.Dates[i]) {
			return false
		}
		a, b := s.Values[i], other.Values[i]
		if IsMissing(a) != IsMissing(b) {
			return false
		}
		if !IsMissing(a) && a != b {
			return false
		}
	}
	return true
}

// -----------------------------------------------------------------------------

// IsMissing reports whether v is the missing-value marker.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Missing returns the missing-value marker.
func Missing() float64 {
	return math.NaN()
}
