package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"econ-dashboard/src/logger"
	"econ-dashboard/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	if cfg.Storage.DBPath == "" {
		return nil, errors.New("sqlite: db_path is required")
	}
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize(ctx context.Context) error {
	dsn := d.Config.Storage.DBPath
	if dir := filepath.Dir(dsn); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables(ctx)
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) createTables(ctx context.Context) error {
	// SQLite types: INTEGER for unix millis, TEXT for the encoded observations
	query := `
		CREATE TABLE IF NOT EXISTS series_cache (
			series_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			observations TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		);
	`
	if _, err := d.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create series_cache: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) LoadSeries(ctx context.Context, seriesID string) (models.MCacheEntry, bool, error) {
	var name, data string
	var fetchedAt int64

	row := d.DB.QueryRowContext(ctx,
		`SELECT name, observations, fetched_at FROM series_cache WHERE series_id = ?`, seriesID)
	if err := row.Scan(&name, &data, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.MCacheEntry{}, false, nil
		}
		return models.MCacheEntry{}, false, err
	}

	series, err := decodeSeries(name, data)
	if err != nil {
		return models.MCacheEntry{}, false, err
	}
	return models.MCacheEntry{
		SeriesID:  seriesID,
		Series:    series,
		FetchedAt: time.UnixMilli(fetchedAt).UTC(),
	}, true, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveSeries(ctx context.Context, entry models.MCacheEntry) error {
	data, err := encodeSeries(entry.Series)
	if err != nil {
		return err
	}

	_, err = d.DB.ExecContext(ctx, `
		INSERT INTO series_cache (series_id, name, observations, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (series_id) DO UPDATE SET
			name = excluded.name,
			observations = excluded.observations,
			fetched_at = excluded.fetched_at
	`, entry.SeriesID, entry.Series.Name, data, entry.FetchedAt.UnixMilli())
	return err
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) DeleteSeries(ctx context.Context, seriesID string) error {
	_, err := d.DB.ExecContext(ctx, `DELETE FROM series_cache WHERE series_id = ?`, seriesID)
	return err
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Clear(ctx context.Context) error {
	res, err := d.DB.ExecContext(ctx, `DELETE FROM series_cache`)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil {
		d.Logger.Info("Cleared %d cached series", n)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
