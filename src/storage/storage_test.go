package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"econ-dashboard/src/interfaces"
	"econ-dashboard/src/logger"
	"econ-dashboard/src/models"
)

func sampleEntry(id string) models.MCacheEntry {
	series := models.NewSeries(id)
	series.Append(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 1.5)
	series.Append(time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), models.Missing())
	series.Append(time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), -2.25)
	return models.MCacheEntry{
		SeriesID:  id,
		Series:    series,
		FetchedAt: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
	}
}

// exerciseStore runs the same contract against every backend.
func exerciseStore(t *testing.T, store interfaces.ISeriesStore) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.LoadSeries(ctx, "MISSING"); err != nil || ok {
		t.Fatalf("absent entry: ok=%v err=%v", ok, err)
	}

	entry := sampleEntry("UNRATE")
	if err := store.SaveSeries(ctx, entry); err != nil {
		t.Fatalf("SaveSeries: %v", err)
	}
	got, ok, err := store.LoadSeries(ctx, "UNRATE")
	if err != nil || !ok {
		t.Fatalf("LoadSeries: ok=%v err=%v", ok, err)
	}
	if !got.Series.Equal(entry.Series) {
		t.Errorf("series mismatch: %+v", got.Series)
	}
	if !got.FetchedAt.Equal(entry.FetchedAt) {
		t.Errorf("fetched_at mismatch: %s vs %s", got.FetchedAt, entry.FetchedAt)
	}

	entry.FetchedAt = entry.FetchedAt.Add(time.Hour)
	entry.Series.Values[0] = 9
	if err := store.SaveSeries(ctx, entry); err != nil {
		t.Fatalf("SaveSeries overwrite: %v", err)
	}
	got, _, _ = store.LoadSeries(ctx, "UNRATE")
	if got.Series.Values[0] != 9 || !got.FetchedAt.Equal(entry.FetchedAt) {
		t.Errorf("overwrite not applied: %+v", got)
	}

	if err := store.DeleteSeries(ctx, "UNRATE"); err != nil {
		t.Fatalf("DeleteSeries: %v", err)
	}
	if err := store.DeleteSeries(ctx, "UNRATE"); err != nil {
		t.Fatalf("DeleteSeries absent: %v", err)
	}
	if _, ok, _ := store.LoadSeries(ctx, "UNRATE"); ok {
		t.Error("entry still present after delete")
	}

	_ = store.SaveSeries(ctx, sampleEntry("A"))
	_ = store.SaveSeries(ctx, sampleEntry("B"))
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, id := range []string{"A", "B"} {
		if _, ok, _ := store.LoadSeries(ctx, id); ok {
			t.Errorf("%s survived Clear", id)
		}
	}
}

func TestSQLiteStore(t *testing.T) {
	cfg := &models.MConfig{Storage: models.MStorageConfig{
		DBType: "sqlite",
		DBPath: filepath.Join(t.TempDir(), "cache", "series.db"),
	}}
	store, err := NewSeriesStore(cfg, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer store.Close()

	exerciseStore(t, store)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	cfg := &models.MConfig{Storage: models.MStorageConfig{DBType: "sqlite", DBPath: filepath.Join(t.TempDir(), "series.db")}}
	ctx := context.Background()

	first, _ := NewAsyncSQLiteDB(cfg, logger.NewNop())
	if err := first.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if err := first.SaveSeries(ctx, sampleEntry("GDPC1")); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second, _ := NewAsyncSQLiteDB(cfg, logger.NewNop())
	if err := second.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	defer second.Close()
	if _, ok, err := second.LoadSeries(ctx, "GDPC1"); err != nil || !ok {
		t.Fatalf("entry lost on reopen: ok=%v err=%v", ok, err)
	}
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("ECONDASH_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ECONDASH_TEST_POSTGRES_DSN not set")
	}
	cfg := &models.MConfig{Storage: models.MStorageConfig{DBType: "postgres", DBConnectionString: dsn, DBName: "econ_dashboard_test"}}
	store, err := NewSeriesStore(cfg, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer store.Close()
	if err := store.Clear(context.Background()); err != nil {
		t.Fatal(err)
	}

	exerciseStore(t, store)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("ECONDASH_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("ECONDASH_TEST_MONGO_URI not set")
	}
	cfg := &models.MConfig{Storage: models.MStorageConfig{DBType: "mongo", DBConnectionString: uri, DBName: "econ_dashboard_test"}}
	store, err := NewSeriesStore(cfg, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer store.Close()
	if err := store.Clear(ctx); err != nil {
		t.Fatal(err)
	}

	exerciseStore(t, store)
}

func TestNewSeriesStoreRejectsUnknownType(t *testing.T) {
	cfg := &models.MConfig{Storage: models.MStorageConfig{DBType: "redis"}}
	if _, err := NewSeriesStore(cfg, logger.NewNop()); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}
