package utils

import (
	"sync"

	"market-breadth/src/models"
)

// -----------------------------------------------------------------------------
// LiveSeries keeps the most recent snapshots in memory for live display.
// -----------------------------------------------------------------------------

type LiveSeries struct {
	buffer *RingBuffer
	mu     sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewLiveSeries(maxPoints int) *LiveSeries {
	return &LiveSeries{buffer: NewRingBuffer(maxPoints)}
}

// -----------------------------------------------------------------------------

// Add appends a snapshot.
func (ls *LiveSeries) Add(s models.MBreadthSnapshot) {
	ls.mu.Lock()
	ls.buffer.Append(s)
	ls.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Load replaces the series with the newest entries of history (oldest first).
func (ls *LiveSeries) Load(history []models.MBreadthSnapshot) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.buffer.Clear()
	start := max(0, len(history)-ls.buffer.Capacity())
	for _, s := range history[start:] {
		ls.buffer.Append(s)
	}
}

// -----------------------------------------------------------------------------

// Latest returns the newest snapshot, if any.
func (ls *LiveSeries) Latest() (models.MBreadthSnapshot, bool) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	latest := ls.buffer.GetLatest(1)
	if len(latest) == 0 {
		return models.MBreadthSnapshot{}, false
	}
	return latest[0], true
}

// -----------------------------------------------------------------------------

// All returns a copy of the series, oldest first.
func (ls *LiveSeries) All() []models.MBreadthSnapshot {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.buffer.GetAll()
}

// -----------------------------------------------------------------------------

func (ls *LiveSeries) Len() int {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.buffer.Size()
}

// -----------------------------------------------------------------------------

// Resize changes how many points are kept.
func (ls *LiveSeries) Resize(maxPoints int) {
	ls.mu.Lock()
	ls.buffer.Resize(maxPoints)
	ls.mu.Unlock()
}
