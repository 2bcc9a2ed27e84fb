package storage

import (
	"fmt"

	"econ-dashboard/src/interfaces"
	"econ-dashboard/src/logger"
	"econ-dashboard/src/models"
)

var (
	_ interfaces.ISeriesStore = (*AsyncSQLiteDB)(nil)
	_ interfaces.ISeriesStore = (*PostgresDB)(nil)
	_ interfaces.ISeriesStore = (*MongoDB)(nil)
)

// NewSeriesStore picks the persistent tier configured by storage.db_type.
func NewSeriesStore(cfg *models.MConfig, log *logger.Logger) (interfaces.ISeriesStore, error) {
	switch cfg.Storage.DBType {
	case "sqlite", "":
		db, err := NewAsyncSQLiteDB(cfg, log)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "postgres":
		db, err := NewPostgresDB(cfg, log)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "mongo":
		db, err := NewMongoDB(cfg, log)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported db_type %q", cfg.Storage.DBType)
	}
}
