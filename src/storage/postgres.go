package storage

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"market-breadth/src/logger"
	"market-breadth/src/models"

	_ "github.com/lib/pq"
)

var unsafeIdent = regexp.MustCompile(`[^a-z0-9_]+`)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	sqlSnapshotStore
	Schema string
}

// -----------------------------------------------------------------------------

// NewPostgresDB stores snapshots in a schema named after the application.
func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	schema := SchemaName(cfg.Name)
	return &PostgresDB{
		Schema: schema,
		sqlSnapshotStore: sqlSnapshotStore{
			Config:      cfg,
			Logger:      log,
			table:       fmt.Sprintf(`"%s"."breadth_snapshots"`, schema),
			placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
			upsert:      "ON CONFLICT (captured_at) DO NOTHING",
		},
	}, nil
}

// -----------------------------------------------------------------------------

// SchemaName turns an application name into a safe lower-case identifier.
func SchemaName(name string) string {
	s := unsafeIdent.ReplaceAllString(strings.ToLower(name), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "market_breadth"
	}
	return s
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}
	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTable("BIGINT", "DOUBLE PRECISION"); err != nil {
		return err
	}
	idx := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS breadth_snapshots_date_idx ON "%s"."breadth_snapshots"(date)`, d.Schema)
	if _, err := d.DB.Exec(idx); err != nil {
		d.Logger.Warning("Failed to create date index: %v", err)
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}
