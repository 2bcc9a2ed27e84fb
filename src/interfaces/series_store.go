package interfaces

import (
	"context"

	"econ-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// ISeriesStore defines the persistent tier of the series cache.
// -----------------------------------------------------------------------------

type ISeriesStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// LoadSeries returns the stored entry for an identifier; ok is false when absent.
	LoadSeries(ctx context.Context, seriesID string) (entry models.MCacheEntry, ok bool, err error)

	// -----------------------------------------------------------------------------

	// SaveSeries upserts an entry together with its fetch timestamp.
	SaveSeries(ctx context.Context, entry models.MCacheEntry) error

	// -----------------------------------------------------------------------------

	// DeleteSeries removes one entry. Deleting an absent entry is not an error.
	DeleteSeries(ctx context.Context, seriesID string) error

	// -----------------------------------------------------------------------------

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
