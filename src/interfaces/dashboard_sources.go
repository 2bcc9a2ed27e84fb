package interfaces

import (
	"context"

	"econ-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// ISeriesProvider resolves remote series in batch.
// -----------------------------------------------------------------------------

type ISeriesProvider interface {

	// GetAll returns one entry per identifier; failed entries are nil.
	GetAll(ctx context.Context, seriesIDs []string) map[string]*models.MSeries
}

// -----------------------------------------------------------------------------
// IIndicatorCatalog is the read side of the indicator registry.
// -----------------------------------------------------------------------------

type IIndicatorCatalog interface {

	// Lookup returns the indicator registered under id.
	Lookup(id string) (models.MIndicator, bool)

	// List returns every indicator, builtins first.
	List() []models.MIndicator

	// CustomSeries returns the stored data of a custom indicator.
	CustomSeries(id string) (*models.MSeries, bool)
}
