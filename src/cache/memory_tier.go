package cache

import (
	"runtime"
	"sync"

	"econ-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// MemoryTier keeps fetched series for the process lifetime.
// -----------------------------------------------------------------------------

type MemoryTier struct {
	entries map[string]models.MCacheEntry
	mu      sync.RWMutex
}

// MemoryStats is reported by the health endpoint.
type MemoryStats struct {
	Entries      int     `json:"entries"`
	Observations int     `json:"observations"`
	HeapAllocMB  float64 `json:"heap_alloc_mb"`
}

// -----------------------------------------------------------------------------

func NewMemoryTier() *MemoryTier {
	return &MemoryTier{
		entries: make(map[string]models.MCacheEntry),
	}
}

// -----------------------------------------------------------------------------

func (m *MemoryTier) Get(seriesID string) (models.MCacheEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[seriesID]
	return entry, ok
}

// -----------------------------------------------------------------------------

func (m *MemoryTier) Set(entry models.MCacheEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[entry.SeriesID] = entry
}

// -----------------------------------------------------------------------------

func (m *MemoryTier) Delete(seriesID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, seriesID)
}

// -----------------------------------------------------------------------------

func (m *MemoryTier) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]models.MCacheEntry)
}

// -----------------------------------------------------------------------------

// Stats counts held series and reads the process heap size.
func (m *MemoryTier) Stats() MemoryStats {
	m.mu.RLock()
	stats := MemoryStats{Entries: len(m.entries)}
	for _, entry := range m.entries {
		stats.Observations += entry.Series.Len()
	}
	m.mu.RUnlock()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	stats.HeapAllocMB = float64(ms.HeapAlloc) / 1024 / 1024
	return stats
}
