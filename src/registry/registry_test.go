package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"econ-dashboard/src/helpers"
	"econ-dashboard/src/loader"
	"econ-dashboard/src/logger"
	"econ-dashboard/src/models"
)

func threeRows(t *testing.T) *models.MSeries {
	t.Helper()
	series, _, err := loader.LoadReader(
		strings.NewReader("date,value\n2023-01-01,1.5\n2023-02-01,2.25\n2023-03-01,3\n"),
		loader.Options{Filename: "custom1.csv", SeriesName: "custom1"},
	)
	if err != nil {
		t.Fatal(err)
	}
	return series
}

func TestBuiltinCatalog(t *testing.T) {
	r, err := NewRegistry(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	list := r.List()
	if len(list) != 13 {
		t.Fatalf("expected 13 builtins, got %d", len(list))
	}
	if list[0].ID != "CPIAUCSL" || list[0].Origin != models.OriginBuiltin {
		t.Errorf("unexpected first indicator %+v", list[0])
	}
	if got := r.Describe("UNRATE"); got != "Civilian Unemployment Rate (UNRATE)" {
		t.Errorf("Describe(UNRATE) = %q", got)
	}
	if got := r.Describe("NOT_A_SERIES"); got != UnknownIndicator {
		t.Errorf("Describe(unknown) = %q", got)
	}
}

func TestUploadScenario(t *testing.T) {
	r, err := NewRegistry(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	ind, err := r.RegisterCustom("custom1", threeRows(t), false)
	if err != nil {
		t.Fatalf("RegisterCustom: %v", err)
	}
	if ind.Origin != models.OriginCustom {
		t.Errorf("expected custom origin, got %s", ind.Origin)
	}
	found, ok := r.Lookup("custom1")
	if !ok || found.Origin != models.OriginCustom {
		t.Fatalf("registry does not contain custom1: %+v", found)
	}

	_, err = r.RegisterCustom("custom1", threeRows(t), false)
	var dup *helpers.DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateNameError, got %v", err)
	}

	if _, err := r.RegisterCustom("custom1", threeRows(t), true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestBuiltinNameCollision(t *testing.T) {
	dir := t.TempDir()
	r, _ := NewRegistry(dir, logger.NewNop())

	for _, overwrite := range []bool{false, true} {
		if _, err := r.RegisterCustom("cpiaucsl", threeRows(t), overwrite); !errors.Is(err, helpers.ErrDuplicateName) {
			t.Errorf("overwrite=%v: expected duplicate name, got %v", overwrite, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "cpiaucsl.csv")); !os.IsNotExist(err) {
		t.Error("rejected dataset was written")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := models.NewSeries("x")
	original.Append(time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), 0.1)
	original.Append(time.Date(2019, 4, 1, 0, 0, 0, 0, time.UTC), models.Missing())
	original.Append(time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC), 123456.789)

	first, _ := NewRegistry(dir, logger.NewNop())
	if _, err := first.RegisterCustom("quarterly_x", original, false); err != nil {
		t.Fatal(err)
	}

	second, err := NewRegistry(dir, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	reloaded, ok := second.CustomSeries("quarterly_x")
	if !ok {
		t.Fatal("custom dataset not reloaded")
	}
	if !reloaded.Equal(original) {
		t.Errorf("round trip mismatch: %v vs %v", reloaded.Values, original.Values)
	}
	if reloaded.Name != "quarterly_x" {
		t.Errorf("series should carry the indicator name, got %q", reloaded.Name)
	}
}

func TestRemoveCustom(t *testing.T) {
	dir := t.TempDir()
	r, _ := NewRegistry(dir, logger.NewNop())
	if _, err := r.RegisterCustom("custom1", threeRows(t), false); err != nil {
		t.Fatal(err)
	}

	if err := r.RemoveCustom("custom1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Lookup("custom1"); ok {
		t.Error("custom1 still registered")
	}
	if _, err := os.Stat(filepath.Join(dir, "custom1.csv")); !os.IsNotExist(err) {
		t.Error("custom1.csv still on disk")
	}
	if err := r.RemoveCustom("custom1"); err != nil {
		t.Errorf("removing an absent name should be a no-op, got %v", err)
	}
	if err := r.RemoveCustom("GDPC1"); !errors.Is(err, helpers.ErrValidation) {
		t.Errorf("expected validation error for builtin, got %v", err)
	}
}

func TestValidateName(t *testing.T) {
	r, _ := NewRegistry(t.TempDir(), logger.NewNop())
	for _, name := range []string{"", "<b>x</b>", "../etc", "has space", strings.Repeat("a", 65), "combined", "Combined"} {
		if err := r.ValidateName(name); !errors.Is(err, helpers.ErrValidation) {
			t.Errorf("ValidateName(%q) = %v, want validation error", name, err)
		}
	}
	if err := r.ValidateName("my-series_2.v1"); err != nil {
		t.Errorf("valid name rejected: %v", err)
	}
}
