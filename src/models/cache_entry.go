package models

import "time"

// MCacheEntry is a cached series with the time it was fetched from origin.
type MCacheEntry struct {
	SeriesID  string
	Series    *MSeries
	FetchedAt time.Time
}
