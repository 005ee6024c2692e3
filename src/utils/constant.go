package utils

import "time"

// -----------------------------------------------------------------------------

const (
	// DefaultLivePoints is how many snapshots the live view keeps.
	DefaultLivePoints = 100

	// MinCycleWait is the shortest pause between two poll cycles.
	MinCycleWait = time.Second
)

// -----------------------------------------------------------------------------

// NextWait returns how long to sleep after a cycle that took elapsed, so
// cycles start roughly every interval but never back to back.
func NextWait(interval, elapsed time.Duration) time.Duration {
	return max(MinCycleWait, interval-elapsed)
}
