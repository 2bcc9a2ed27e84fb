package registry

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"econ-dashboard/src/helpers"
	"econ-dashboard/src/interfaces"
	"econ-dashboard/src/loader"
	"econ-dashboard/src/logger"
	"econ-dashboard/src/models"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

type customEntry struct {
	indicator models.MIndicator
	series    *models.MSeries
}

// -----------------------------------------------------------------------------
// Registry merges the builtin catalog with uploaded custom datasets.
// Custom datasets are persisted as <dir>/<name>.csv.
// -----------------------------------------------------------------------------

type Registry struct {
	Dir    string
	Logger *logger.Logger
	Events interfaces.IEventBroadcaster

	mu     sync.RWMutex
	custom map[string]customEntry
	policy *bluemonday.Policy
}

// -----------------------------------------------------------------------------

// NewRegistry creates dir when missing and loads every dataset already stored there.
func NewRegistry(dir string, log *logger.Logger) (*Registry, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create custom dir %s: %w", dir, err)
	}

	r := &Registry{
		Dir:    dir,
		Logger: log,
		Events: interfaces.NopBroadcaster{},
		custom: make(map[string]customEntry),
		policy: bluemonday.StrictPolicy(),
	}
	if err := r.loadStored(); err != nil {
		return nil, err
	}
	return r, nil
}

// SetBroadcaster routes registry events to connected clients.
func (r *Registry) SetBroadcaster(events interfaces.IEventBroadcaster) {
	if events == nil {
		events = interfaces.NopBroadcaster{}
	}
	r.Events = events
}

// -----------------------------------------------------------------------------

func (r *Registry) loadStored() error {
	paths, err := filepath.Glob(filepath.Join(r.Dir, "*.csv"))
	if err != nil {
		return err
	}

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if r.isBuiltin(name) || !namePattern.MatchString(name) {
			r.Logger.Warning("Skipping stored dataset %s: invalid name", path)
			continue
		}
		series, report, err := loader.LoadFile(path, loader.Options{SeriesName: name})
		if err != nil {
			r.Logger.Warning("Skipping stored dataset %s: %v", path, err)
			continue
		}
		r.custom[name] = customEntry{indicator: customIndicator(name), series: series}
		r.Logger.Debug("Loaded custom dataset %s (%d rows, %s)", name, report.TotalRows, report.Frequency)
	}

	if len(r.custom) > 0 {
		r.Logger.Info("Loaded %d custom datasets from %s", len(r.custom), r.Dir)
	}
	return nil
}

// -----------------------------------------------------------------------------

func customIndicator(name string) models.MIndicator {
	return models.MIndicator{
		ID:          name,
		Description: fmt.Sprintf("Custom dataset (%s)", name),
		Origin:      models.OriginCustom,
		Title:       name,
		YLabel:      name,
		Label:       name,
	}
}

func (r *Registry) isBuiltin(name string) bool {
	_, ok := builtinByID(name)
	return ok
}

func builtinByID(id string) (models.MIndicator, bool) {
	for _, ind := range builtins {
		if strings.EqualFold(ind.ID, id) {
			return ind, true
		}
	}
	return models.MIndicator{}, false
}

func (r *Registry) path(name string) string {
	return filepath.Join(r.Dir, name+".csv")
}

// -----------------------------------------------------------------------------

// ValidateName rejects names that would not be safe as a file name or in markup.
func (r *Registry) ValidateName(name string) error {
	if name == "" {
		return helpers.NewValidationError("indicator name is required")
	}
	if r.policy.Sanitize(name) != name {
		return helpers.NewValidationError("indicator name %q contains markup", name)
	}
	if !namePattern.MatchString(name) {
		return helpers.NewValidationError("indicator name %q must be 1-64 letters, digits, '_', '-' or '.'", name)
	}
	if strings.EqualFold(name, models.CombinedChartID) {
		return helpers.NewValidationError("indicator name %q is reserved", name)
	}
	return nil
}

// -----------------------------------------------------------------------------

// RegisterCustom stores a dataset under name. A builtin name is always rejected;
// an existing custom name is rejected unless overwrite is set. Nothing is
// written when the name is rejected.
func (r *Registry) RegisterCustom(name string, series *models.MSeries, overwrite bool) (models.MIndicator, error) {
	if err := r.ValidateName(name); err != nil {
		return models.MIndicator{}, err
	}
	if series.Len() == 0 {
		return models.MIndicator{}, helpers.NewValidationError("dataset %s has no rows", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isBuiltin(name) {
		return models.MIndicator{}, helpers.NewDuplicateNameError(name)
	}
	if !overwrite {
		if _, exists := r.custom[name]; exists {
			return models.MIndicator{}, helpers.NewDuplicateNameError(name)
		}
		if _, err := os.Stat(r.path(name)); err == nil {
			return models.MIndicator{}, helpers.NewDuplicateNameError(name)
		}
	}

	stored := series.Copy()
	stored.Name = name
	if err := r.persist(name, stored); err != nil {
		return models.MIndicator{}, err
	}

	indicator := customIndicator(name)
	r.custom[name] = customEntry{indicator: indicator, series: stored}
	r.Logger.Info("Registered custom indicator %s (%d rows)", name, stored.Len())
	r.Events.Broadcast(models.MEvent{Type: models.EventIndicatorAdded, SeriesID: name, Timestamp: time.Now().Unix()})
	return indicator, nil
}

// -----------------------------------------------------------------------------

// persist writes the CSV next to its final path and renames it into place.
func (r *Registry) persist(name string, series *models.MSeries) error {
	var buf bytes.Buffer
	if err := loader.WriteCSV(&buf, series); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(r.Dir, "."+name+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, r.path(name)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// RemoveCustom deletes a custom dataset. Unknown names are a no-op.
func (r *Registry) RemoveCustom(name string) error {
	if r.isBuiltin(name) {
		return helpers.NewValidationError("builtin indicator %s cannot be removed", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, known := r.custom[name]
	if namePattern.MatchString(name) {
		if err := os.Remove(r.path(name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	if !known {
		return nil
	}

	delete(r.custom, name)
	r.Logger.Info("Removed custom indicator %s", name)
	r.Events.Broadcast(models.MEvent{Type: models.EventIndicatorRemoved, SeriesID: name, Timestamp: time.Now().Unix()})
	return nil
}

// -----------------------------------------------------------------------------

// Describe never fails; unknown identifiers get UnknownIndicator.
func (r *Registry) Describe(id string) string {
	if ind, ok := r.Lookup(id); ok {
		return ind.Description
	}
	return UnknownIndicator
}

// Lookup returns the indicator registered under id.
func (r *Registry) Lookup(id string) (models.MIndicator, bool) {
	if ind, ok := builtinByID(id); ok {
		return ind, true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.custom[id]
	return entry.indicator, ok
}

// -----------------------------------------------------------------------------

// List returns builtins in catalog order followed by custom indicators by name.
func (r *Registry) List() []models.MIndicator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.MIndicator, 0, len(builtins)+len(r.custom))
	out = append(out, builtins...)

	names := make([]string, 0, len(r.custom))
	for name := range r.custom {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, r.custom[name].indicator)
	}
	return out
}

// BuiltinIDs returns the builtin identifiers in catalog order.
func (r *Registry) BuiltinIDs() []string {
	ids := make([]string, len(builtins))
	for i, ind := range builtins {
		ids[i] = ind.ID
	}
	return ids
}

// -----------------------------------------------------------------------------

// CustomSeries returns the stored data of a custom indicator. The series is
// shared and must not be modified.
func (r *Registry) CustomSeries(name string) (*models.MSeries, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.custom[name]
	return entry.series, ok
}
