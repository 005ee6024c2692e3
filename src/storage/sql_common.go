package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"market-breadth/src/helpers"
	"market-breadth/src/logger"
	"market-breadth/src/models"
)

// snapshotColumns is the column order of the breadth_snapshots table.
var snapshotColumns = []string{
	"captured_at", "cycle_id", "date", "time",
	"total", "up_count", "down_count", "flat_count",
	"up_3pct", "down_3pct", "up_5pct", "down_5pct",
	"limit_up", "limit_down",
	"index_price", "index_pre_close", "index_change", "index_pct", "index_amount",
}

// -----------------------------------------------------------------------------
// sqlSnapshotStore holds the SQL shared by the SQLite and Postgres stores.
// -----------------------------------------------------------------------------

type sqlSnapshotStore struct {
	DB     *sql.DB
	Logger *logger.Logger
	Config *models.MConfig

	table       string             // fully qualified table name
	placeholder func(n int) string // 1-based bind variable
	upsert      string             // conflict clause appended to INSERT
}

// -----------------------------------------------------------------------------

func (d *sqlSnapshotStore) createTable(intType, realType string) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			captured_at %[2]s PRIMARY KEY,
			cycle_id TEXT,
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			total %[2]s, up_count %[2]s, down_count %[2]s, flat_count %[2]s,
			up_3pct %[2]s, down_3pct %[2]s, up_5pct %[2]s, down_5pct %[2]s,
			limit_up %[2]s, limit_down %[2]s,
			index_price %[3]s, index_pre_close %[3]s, index_change %[3]s,
			index_pct %[3]s, index_amount %[3]s
		);
	`, d.table, intType, realType)
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewDatabaseError("create breadth_snapshots", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *sqlSnapshotStore) SaveSnapshot(s models.MBreadthSnapshot) error {
	binds := make([]string, len(snapshotColumns))
	for i := range binds {
		binds[i] = d.placeholder(i + 1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) %s",
		d.table, strings.Join(snapshotColumns, ", "), strings.Join(binds, ", "), d.upsert)

	local := s.LocalTime()
	c, ix := s.Counts, s.Index
	_, err := d.DB.Exec(query,
		s.CapturedAt.UnixMilli(), s.CycleID, local.Format(models.DateLayout), local.Format(models.TimeLayout),
		c.Total, c.UpCount, c.DownCount, c.FlatCount,
		c.Up3Pct, c.Down3Pct, c.Up5Pct, c.Down5Pct,
		c.LimitUp, c.LimitDown,
		ix.Price, ix.PreviousClose, ix.Change, ix.ChangePercent, ix.Turnover,
	)
	if err != nil {
		return helpers.NewDatabaseError("insert snapshot", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *sqlSnapshotStore) QueryRange(start, end time.Time) ([]models.MBreadthSnapshot, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE date >= %s AND date <= %s ORDER BY captured_at",
		strings.Join(snapshotColumns, ", "), d.table, d.placeholder(1), d.placeholder(2))

	rows, err := d.DB.Query(query, dayKey(start), dayKey(end))
	if err != nil {
		return nil, helpers.NewDatabaseError("query range", err)
	}
	defer rows.Close()

	var out []models.MBreadthSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, helpers.NewDatabaseError("scan snapshot", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *sqlSnapshotStore) Latest() (*models.MBreadthSnapshot, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY captured_at DESC LIMIT 1",
		strings.Join(snapshotColumns, ", "), d.table)

	rows, err := d.DB.Query(query)
	if err != nil {
		return nil, helpers.NewDatabaseError("query latest", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	s, err := scanSnapshot(rows)
	if err != nil {
		return nil, helpers.NewDatabaseError("scan snapshot", err)
	}
	return &s, nil
}

// -----------------------------------------------------------------------------

// CleanupOldData deletes rows older than data_retention_days; 0 keeps all.
func (d *sqlSnapshotStore) CleanupOldData() error {
	days := d.Config.Storage.DataRetentionDays
	if days <= 0 {
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -days).UnixMilli()
	query := fmt.Sprintf("DELETE FROM %s WHERE captured_at < %s", d.table, d.placeholder(1))
	res, err := d.DB.Exec(query, cutoff)
	if err != nil {
		return helpers.NewDatabaseError("cleanup", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		d.Logger.Info("Cleanup: removed %d snapshots older than %d days", n, days)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *sqlSnapshotStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------

func scanSnapshot(rows *sql.Rows) (models.MBreadthSnapshot, error) {
	var (
		s          models.MBreadthSnapshot
		ms         int64
		cycleID    sql.NullString
		date, tstr string
	)
	c, ix := &s.Counts, &s.Index
	err := rows.Scan(&ms, &cycleID, &date, &tstr,
		&c.Total, &c.UpCount, &c.DownCount, &c.FlatCount,
		&c.Up3Pct, &c.Down3Pct, &c.Up5Pct, &c.Down5Pct,
		&c.LimitUp, &c.LimitDown,
		&ix.Price, &ix.PreviousClose, &ix.Change, &ix.ChangePercent, &ix.Turnover,
	)
	if err != nil {
		return s, err
	}
	s.CapturedAt = time.UnixMilli(ms).In(models.MarketLocation)
	s.CycleID = cycleID.String
	return s, nil
}
