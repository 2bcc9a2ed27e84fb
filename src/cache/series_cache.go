package cache

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"econ-dashboard/src/helpers"
	"econ-dashboard/src/interfaces"
	"econ-dashboard/src/logger"
	"econ-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// SeriesCache fronts the remote origin with a memory tier and a persistent tier.
// Memory entries never expire; persisted entries are fresh while younger than the TTL.
// -----------------------------------------------------------------------------

type SeriesCache struct {
	Origin      interfaces.ISeriesOrigin
	Store       interfaces.ISeriesStore
	Events      interfaces.IEventBroadcaster
	Logger      *logger.Logger
	TTL         time.Duration
	Concurrency int

	memory   *MemoryTier
	now      func() time.Time
	locksMu  sync.Mutex
	keyLocks map[string]*sync.Mutex
}

// -----------------------------------------------------------------------------

// NewSeriesCache wires the tiers. store may be nil for a memory-only cache.
func NewSeriesCache(origin interfaces.ISeriesOrigin, store interfaces.ISeriesStore, ttl time.Duration, concurrency int, log *logger.Logger) *SeriesCache {
	if concurrency <= 0 {
		concurrency = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &SeriesCache{
		Origin:      origin,
		Store:       store,
		Events:      interfaces.NopBroadcaster{},
		Logger:      log,
		TTL:         ttl,
		Concurrency: concurrency,
		memory:      NewMemoryTier(),
		now:         time.Now,
		keyLocks:    make(map[string]*sync.Mutex),
	}
}

// -----------------------------------------------------------------------------

// SetClock replaces the time source used for freshness checks.
func (c *SeriesCache) SetClock(now func() time.Time) {
	c.now = now
}

// SetBroadcaster routes cache events to connected clients.
func (c *SeriesCache) SetBroadcaster(events interfaces.IEventBroadcaster) {
	if events == nil {
		events = interfaces.NopBroadcaster{}
	}
	c.Events = events
}

// MemoryStats reports the memory tier.
func (c *SeriesCache) MemoryStats() MemoryStats {
	return c.memory.Stats()
}

// -----------------------------------------------------------------------------

func (c *SeriesCache) lockFor(seriesID string) *sync.Mutex {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()

	mu, ok := c.keyLocks[seriesID]
	if !ok {
		mu = &sync.Mutex{}
		c.keyLocks[seriesID] = mu
	}
	return mu
}

// lockAll takes every known key lock in sorted order and returns the release.
func (c *SeriesCache) lockAll() func() {
	c.locksMu.Lock()
	ids := make([]string, 0, len(c.keyLocks))
	for id := range c.keyLocks {
		ids = append(ids, id)
	}
	locks := make([]*sync.Mutex, 0, len(ids))
	sort.Strings(ids)
	for _, id := range ids {
		locks = append(locks, c.keyLocks[id])
	}
	c.locksMu.Unlock()

	for _, mu := range locks {
		mu.Lock()
	}
	return func() {
		for _, mu := range locks {
			mu.Unlock()
		}
	}
}

// -----------------------------------------------------------------------------

// Get returns the series for an identifier. The returned series is shared
// with the cache and must not be modified.
func (c *SeriesCache) Get(ctx context.Context, seriesID string) (*models.MSeries, error) {
	if entry, ok := c.memory.Get(seriesID); ok {
		return entry.Series, nil
	}

	mu := c.lockFor(seriesID)
	mu.Lock()
	defer mu.Unlock()

	// Filled while waiting for the key lock.
	if entry, ok := c.memory.Get(seriesID); ok {
		return entry.Series, nil
	}

	if entry, ok := c.loadFresh(ctx, seriesID); ok {
		c.memory.Set(entry)
		return entry.Series, nil
	}

	return c.fetch(ctx, seriesID)
}

// -----------------------------------------------------------------------------

func (c *SeriesCache) loadFresh(ctx context.Context, seriesID string) (models.MCacheEntry, bool) {
	if c.Store == nil {
		return models.MCacheEntry{}, false
	}

	entry, ok, err := c.Store.LoadSeries(ctx, seriesID)
	if err != nil {
		c.Logger.Warning("Persistent cache read failed for %s: %v", seriesID, err)
		return models.MCacheEntry{}, false
	}
	if !ok {
		return models.MCacheEntry{}, false
	}

	age := c.now().Sub(entry.FetchedAt)
	if age >= c.TTL {
		c.Logger.Debug("Persistent entry %s is stale (age %s)", seriesID, age.Round(time.Second))
		return models.MCacheEntry{}, false
	}
	return entry, true
}

// -----------------------------------------------------------------------------

func (c *SeriesCache) fetch(ctx context.Context, seriesID string) (*models.MSeries, error) {
	if c.Origin == nil {
		return nil, helpers.NewFetchError(nil, "no origin configured for %s", seriesID)
	}

	series, err := c.Origin.FetchSeries(ctx, seriesID)
	if err != nil {
		var fetchErr *helpers.FetchError
		if errors.As(err, &fetchErr) {
			return nil, err
		}
		return nil, helpers.NewFetchError(err, "fetch %s", seriesID)
	}
	if series == nil {
		return nil, helpers.NewFetchError(nil, "origin returned no data for %s", seriesID)
	}

	entry := models.MCacheEntry{
		SeriesID:  seriesID,
		Series:    series,
		FetchedAt: c.now().UTC(),
	}
	c.memory.Set(entry)

	if c.Store != nil {
		if err := c.Store.SaveSeries(ctx, entry); err != nil {
			c.Logger.Warning("Persistent cache write failed for %s: %v", seriesID, err)
		}
	}
	c.Logger.Info("Fetched %s from %s (%d observations)", seriesID, c.Origin.Name(), series.Len())
	return series, nil
}

// -----------------------------------------------------------------------------

// GetAll resolves every identifier independently. A failed entry is logged
// and reported as nil; it never aborts its siblings.
func (c *SeriesCache) GetAll(ctx context.Context, seriesIDs []string) map[string]*models.MSeries {
	results := make(map[string]*models.MSeries, len(seriesIDs))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, c.Concurrency)

	unique := make([]string, 0, len(seriesIDs))
	for _, id := range seriesIDs {
		if _, seen := results[id]; seen {
			continue
		}
		results[id] = nil
		unique = append(unique, id)
	}

	for _, id := range unique {
		wg.Add(1)
		go func(seriesID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			series, err := c.Get(ctx, seriesID)
			if err != nil {
				c.Logger.Error("Error fetching %s: %v", seriesID, err)
				return
			}

			mu.Lock()
			results[seriesID] = series
			mu.Unlock()
		}(id)
	}

	wg.Wait()
	return results
}

// -----------------------------------------------------------------------------

// Invalidate drops an identifier from both tiers.
func (c *SeriesCache) Invalidate(ctx context.Context, seriesID string) error {
	mu := c.lockFor(seriesID)
	mu.Lock()
	defer mu.Unlock()

	c.memory.Delete(seriesID)
	if c.Store != nil {
		if err := c.Store.DeleteSeries(ctx, seriesID); err != nil {
			return err
		}
	}

	c.Logger.Info("Invalidated %s", seriesID)
	c.Events.Broadcast(models.MEvent{Type: models.EventCacheInvalidated, SeriesID: seriesID, Timestamp: c.now().Unix()})
	return nil
}

// -----------------------------------------------------------------------------

// Clear empties both tiers. It waits for in-flight fetches so none of them
// repopulates the memory tier after the clear.
func (c *SeriesCache) Clear(ctx context.Context) error {
	unlock := c.lockAll()
	defer unlock()

	c.memory.Clear()
	if c.Store != nil {
		if err := c.Store.Clear(ctx); err != nil {
			return err
		}
	}

	c.Logger.Info("Cache cleared")
	c.Events.Broadcast(models.MEvent{Type: models.EventCacheInvalidated, Timestamp: c.now().Unix()})
	return nil
}

// -----------------------------------------------------------------------------

// Refresh re-fetches an identifier from origin regardless of freshness.
// The previous entry is kept when the fetch fails.
func (c *SeriesCache) Refresh(ctx context.Context, seriesID string) (*models.MSeries, error) {
	mu := c.lockFor(seriesID)
	mu.Lock()
	defer mu.Unlock()

	previous, hadPrevious := c.memory.Get(seriesID)
	c.memory.Delete(seriesID)

	series, err := c.fetch(ctx, seriesID)
	if err != nil {
		if hadPrevious {
			c.memory.Set(previous)
		}
		return nil, err
	}

	c.Events.Broadcast(models.MEvent{Type: models.EventCacheRefreshed, SeriesID: seriesID, Timestamp: c.now().Unix()})
	return series, nil
}
