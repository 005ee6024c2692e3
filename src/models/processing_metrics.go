package models

// MProcessingMetrics describes the cost of one collection cycle.
type MProcessingMetrics struct {
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	UniverseSize   int     `json:"universe_size"`
	BatchesTotal   int     `json:"batches_total"`
	BatchesFailed  int     `json:"batches_failed"`
	IndexOK        bool    `json:"index_ok"`
}
