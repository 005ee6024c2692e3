package storage

import (
	"database/sql"
	"os"
	"path/filepath"

	"market-breadth/src/logger"
	"market-breadth/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	sqlSnapshotStore
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{sqlSnapshotStore{
		Config:      cfg,
		Logger:      log,
		table:       "breadth_snapshots",
		placeholder: func(int) string { return "?" },
		upsert:      "ON CONFLICT(captured_at) DO NOTHING",
	}}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath
	if dir := filepath.Dir(dsn); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}
	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	if err := d.createTable("INTEGER", "REAL"); err != nil {
		return err
	}
	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_breadth_snapshots_date ON breadth_snapshots(date)"); err != nil {
		d.Logger.Warning("Failed to create date index: %v", err)
	}

	d.Logger.Info("SQLite store ready at %s", dsn)
	return nil
}
