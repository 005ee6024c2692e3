package storage

import (
	"fmt"

	"market-breadth/src/interfaces"
	"market-breadth/src/logger"
	"market-breadth/src/models"
)

// NewStore returns the snapshot store selected by storage.db_type.
// The store still needs Initialize before use.
func NewStore(cfg *models.MConfig, log *logger.Logger) (interfaces.ISnapshotStore, error) {
	switch cfg.Storage.DBType {
	case "", "excel":
		return NewExcelStore(cfg, log), nil
	case "sqlite":
		return NewAsyncSQLiteDB(cfg, log)
	case "postgres":
		return NewPostgresDB(cfg, log)
	}
	return nil, fmt.Errorf("unsupported storage type: %q", cfg.Storage.DBType)
}
