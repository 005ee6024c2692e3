package models

// MColumnSummary holds avg/max/min for one count column.
type MColumnSummary struct {
	Avg float64 `json:"avg"`
	Max int     `json:"max"`
	Min int     `json:"min"`
}

// MSnapshotSummary summarizes a range of stored snapshots.
type MSnapshotSummary struct {
	RecordCount int                       `json:"record_count"`
	DateRange   []string                  `json:"date_range,omitempty"`
	Columns     map[string]MColumnSummary `json:"columns,omitempty"`
}
