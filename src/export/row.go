package export

import "market-breadth/src/models"

// Row is the flat export record of one snapshot.
type Row struct {
	Datetime      string  `json:"datetime" parquet:"datetime"`
	Date          string  `json:"date" parquet:"date"`
	Time          string  `json:"time" parquet:"time"`
	Total         int64   `json:"total" parquet:"total"`
	UpCount       int64   `json:"up_count" parquet:"up_count"`
	DownCount     int64   `json:"down_count" parquet:"down_count"`
	FlatCount     int64   `json:"flat_count" parquet:"flat_count"`
	Up3Pct        int64   `json:"up_3pct" parquet:"up_3pct"`
	Down3Pct      int64   `json:"down_3pct" parquet:"down_3pct"`
	Up5Pct        int64   `json:"up_5pct" parquet:"up_5pct"`
	Down5Pct      int64   `json:"down_5pct" parquet:"down_5pct"`
	LimitUp       int64   `json:"limit_up" parquet:"limit_up"`
	LimitDown     int64   `json:"limit_down" parquet:"limit_down"`
	IndexPrice    float64 `json:"index_price" parquet:"index_price"`
	IndexPreClose float64 `json:"index_pre_close" parquet:"index_pre_close"`
	IndexChange   float64 `json:"index_change" parquet:"index_change"`
	IndexPct      float64 `json:"index_pct" parquet:"index_pct"`
	IndexAmount   float64 `json:"index_amount" parquet:"index_amount"`
}

// Rows flattens snapshots for export.
func Rows(snaps []models.MBreadthSnapshot) []Row {
	out := make([]Row, len(snaps))
	for i, s := range snaps {
		t := s.LocalTime()
		c, ix := s.Counts, s.Index
		out[i] = Row{
			Datetime:      t.Format(models.DateTimeLayout),
			Date:          t.Format(models.DateLayout),
			Time:          t.Format(models.TimeLayout),
			Total:         int64(c.Total),
			UpCount:       int64(c.UpCount),
			DownCount:     int64(c.DownCount),
			FlatCount:     int64(c.FlatCount),
			Up3Pct:        int64(c.Up3Pct),
			Down3Pct:      int64(c.Down3Pct),
			Up5Pct:        int64(c.Up5Pct),
			Down5Pct:      int64(c.Down5Pct),
			LimitUp:       int64(c.LimitUp),
			LimitDown:     int64(c.LimitDown),
			IndexPrice:    ix.Price,
			IndexPreClose: ix.PreviousClose,
			IndexChange:   ix.Change,
			IndexPct:      ix.ChangePercent,
			IndexAmount:   ix.Turnover,
		}
	}
	return out
}
