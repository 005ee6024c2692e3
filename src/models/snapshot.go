package models

import (
	"fmt"
	"strconv"
	"time"
)

// MarketLocation is the exchange local time (UTC+8, no DST).
var MarketLocation = time.FixedZone("CST", 8*60*60)

const (
	DateTimeLayout = "2006-01-02 15:04:05"
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
)

// SnapshotColumns is the flat column order used by tabular stores and exports.
var SnapshotColumns = []string{
	"datetime", "date", "time",
	"total", "up_count", "down_count", "flat_count",
	"up_3pct", "down_3pct", "up_5pct", "down_5pct",
	"limit_up", "limit_down",
	"index_price", "index_pre_close", "index_change", "index_pct", "index_amount",
}

// -----------------------------------------------------------------------------

// MBreadthSnapshot is the aggregated result of one poll cycle.
type MBreadthSnapshot struct {
	CycleID    string             `json:"cycle_id,omitempty"`
	CapturedAt time.Time          `json:"captured_at"`
	Counts     MBatchStats        `json:"counts"`
	Index      MIndexQuote        `json:"index"`
	Metrics    MProcessingMetrics `json:"metrics"`
}

// -----------------------------------------------------------------------------

func (s MBreadthSnapshot) LocalTime() time.Time {
	return s.CapturedAt.In(MarketLocation)
}

// -----------------------------------------------------------------------------

func (s MBreadthSnapshot) Date() string {
	return s.LocalTime().Format(DateLayout)
}

// -----------------------------------------------------------------------------

// Row flattens the snapshot in SnapshotColumns order.
func (s MBreadthSnapshot) Row() []interface{} {
	t := s.LocalTime()
	c := s.Counts
	return []interface{}{
		t.Format(DateTimeLayout), t.Format(DateLayout), t.Format(TimeLayout),
		c.Total, c.UpCount, c.DownCount, c.FlatCount,
		c.Up3Pct, c.Down3Pct, c.Up5Pct, c.Down5Pct,
		c.LimitUp, c.LimitDown,
		s.Index.Price, s.Index.PreviousClose, s.Index.Change, s.Index.ChangePercent, s.Index.Turnover,
	}
}

// -----------------------------------------------------------------------------

// Record returns the flat column -> value mapping of the snapshot.
func (s MBreadthSnapshot) Record() map[string]interface{} {
	row := s.Row()
	rec := make(map[string]interface{}, len(row))
	for i, col := range SnapshotColumns {
		rec[col] = row[i]
	}
	return rec
}

// -----------------------------------------------------------------------------

// SnapshotFromRecord rebuilds a snapshot from string cells keyed by column.
// Missing numeric cells read as zero; the datetime cell is mandatory.
func SnapshotFromRecord(rec map[string]string) (MBreadthSnapshot, error) {
	var s MBreadthSnapshot

	ts, err := time.ParseInLocation(DateTimeLayout, rec["datetime"], MarketLocation)
	if err != nil {
		return s, fmt.Errorf("invalid datetime %q: %w", rec["datetime"], err)
	}
	s.CapturedAt = ts

	atoi := func(col string) int {
		v, _ := strconv.ParseFloat(rec[col], 64)
		return int(v)
	}
	atof := func(col string) float64 {
		v, _ := strconv.ParseFloat(rec[col], 64)
		return v
	}

	s.Counts = MBatchStats{
		Total:     atoi("total"),
		UpCount:   atoi("up_count"),
		DownCount: atoi("down_count"),
		FlatCount: atoi("flat_count"),
		Up3Pct:    atoi("up_3pct"),
		Down3Pct:  atoi("down_3pct"),
		Up5Pct:    atoi("up_5pct"),
		Down5Pct:  atoi("down_5pct"),
		LimitUp:   atoi("limit_up"),
		LimitDown: atoi("limit_down"),
	}
	s.Index = MIndexQuote{
		Price:         atof("index_price"),
		PreviousClose: atof("index_pre_close"),
		Change:        atof("index_change"),
		ChangePercent: atof("index_pct"),
		Turnover:      atof("index_amount"),
	}
	return s, nil
}
