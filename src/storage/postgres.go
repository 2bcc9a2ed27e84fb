package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"econ-dashboard/src/logger"
	"econ-dashboard/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewPostgresDB keeps the cache in its own schema: db_name when set,
// otherwise the executable name.
func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	name := cfg.Storage.DBName
	if name == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable name: %w", err)
		}
		name = filepath.Base(exe)
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	if strings.ContainsRune(name, '"') {
		return nil, fmt.Errorf("invalid schema name %q", name)
	}

	return &PostgresDB{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize(ctx context.Context) error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			series_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			observations JSONB NOT NULL,
			fetched_at TIMESTAMPTZ NOT NULL
		);
	`, d.table())
	if _, err := d.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create %s: %w", d.table(), err)
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) table() string {
	return fmt.Sprintf(`"%s"."series_cache"`, d.Schema)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) LoadSeries(ctx context.Context, seriesID string) (models.MCacheEntry, bool, error) {
	var name, data string
	var fetchedAt time.Time

	query := fmt.Sprintf(`SELECT name, observations::text, fetched_at FROM %s WHERE series_id = $1`, d.table())
	if err := d.DB.QueryRowContext(ctx, query, seriesID).Scan(&name, &data, &fetchedAt); err != nil {
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
		FetchedAt: fetchedAt.UTC(),
	}, true, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveSeries(ctx context.Context, entry models.MCacheEntry) error {
	data, err := encodeSeries(entry.Series)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (series_id, name, observations, fetched_at)
		VALUES ($1, $2, $3::jsonb, $4)
		ON CONFLICT (series_id) DO UPDATE SET
			name = EXCLUDED.name,
			observations = EXCLUDED.observations,
			fetched_at = EXCLUDED.fetched_at
	`, d.table())
	_, err = d.DB.ExecContext(ctx, query, entry.SeriesID, entry.Series.Name, data, entry.FetchedAt.UTC())
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) DeleteSeries(ctx context.Context, seriesID string) error {
	_, err := d.DB.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE series_id = $1`, d.table()), seriesID)
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Clear(ctx context.Context) error {
	_, err := d.DB.ExecContext(ctx, fmt.Sprintf(`TRUNCATE %s`, d.table()))
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
