package models

// MBatchStats holds breadth counts for one batch or one whole cycle.
type MBatchStats struct {
	Total     int `json:"total"`
	UpCount   int `json:"up_count"`
	DownCount int `json:"down_count"`
	FlatCount int `json:"flat_count"`
	Up3Pct    int `json:"up_3pct"`
	Down3Pct  int `json:"down_3pct"`
	Up5Pct    int `json:"up_5pct"`
	Down5Pct  int `json:"down_5pct"`
	LimitUp   int `json:"limit_up"`
	LimitDown int `json:"limit_down"`
}

// -----------------------------------------------------------------------------

// Add returns the field-wise sum of s and o.
func (s MBatchStats) Add(o MBatchStats) MBatchStats {
	return MBatchStats{
		Total:     s.Total + o.Total,
		UpCount:   s.UpCount + o.UpCount,
		DownCount: s.DownCount + o.DownCount,
		FlatCount: s.FlatCount + o.FlatCount,
		Up3Pct:    s.Up3Pct + o.Up3Pct,
		Down3Pct:  s.Down3Pct + o.Down3Pct,
		Up5Pct:    s.Up5Pct + o.Up5Pct,
		Down5Pct:  s.Down5Pct + o.Down5Pct,
		LimitUp:   s.LimitUp + o.LimitUp,
		LimitDown: s.LimitDown + o.LimitDown,
	}
}

// -----------------------------------------------------------------------------

// MIndexQuote is the reference index quote merged into every snapshot.
type MIndexQuote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previous_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Turnover      float64 `json:"turnover"`
}
