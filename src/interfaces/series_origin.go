package interfaces

import (
	"context"

	"econ-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// ISeriesOrigin is the remote statistics API the cache fronts.
// -----------------------------------------------------------------------------

type ISeriesOrigin interface {

	// Name returns the unique identifier of the origin
	Name() string

	// -----------------------------------------------------------------------------

	// FetchSeries retrieves the full date-indexed series for an identifier.
	FetchSeries(ctx context.Context, seriesID string) (*models.MSeries, error)

	// -----------------------------------------------------------------------------

	// Search returns series metadata matching free text.
	Search(ctx context.Context, text string) ([]models.MSeriesInfo, error)

	// -----------------------------------------------------------------------------

	// SeriesInfo returns the metadata of one series.
	SeriesInfo(ctx context.Context, seriesID string) (*models.MSeriesInfo, error)
}
