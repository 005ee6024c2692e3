package models

import "time"

// MPollerStats reports poll loop health.
type MPollerStats struct {
	Running             bool      `json:"running"`
	IntervalSeconds     int       `json:"interval_seconds"`
	Cycles              int64     `json:"cycles"`
	Failures            int64     `json:"failures"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastSuccess         time.Time `json:"last_success"`
	LastError           string    `json:"last_error,omitempty"`
	MarketOpen          bool      `json:"market_open"`
}
