package utils

import (
	"market-breadth/src/models"
)

// -----------------------------------------------------------------------------
// RingBuffer is a fixed-size circular buffer of snapshots. It is not safe for
// concurrent use; LiveSeries adds locking.
// -----------------------------------------------------------------------------

type RingBuffer struct {
	data     []models.MBreadthSnapshot
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewRingBuffer creates a new buffer with fixed capacity
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = DefaultLivePoints
	}

	return &RingBuffer{
		data:     make([]models.MBreadthSnapshot, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append adds a snapshot, overwriting the oldest one when full.
func (rb *RingBuffer) Append(s models.MBreadthSnapshot) {
	rb.data[rb.index] = s
	rb.index = (rb.index + 1) % rb.capacity

	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// GetLatest returns up to n newest snapshots, oldest first.
func (rb *RingBuffer) GetLatest(n int) []models.MBreadthSnapshot {
	if rb.size == 0 || n <= 0 {
		return []models.MBreadthSnapshot{}
	}

	count := min(n, rb.size)
	result := make([]models.MBreadthSnapshot, count)

	// Latest data is at index-1
	startIdx := (rb.index - count + rb.capacity) % rb.capacity
	for i := 0; i < count; i++ {
		result[i] = rb.data[(startIdx+i)%rb.capacity]
	}
	return result
}

// -----------------------------------------------------------------------------

// GetAll returns all data in insertion order (oldest to newest)
func (rb *RingBuffer) GetAll() []models.MBreadthSnapshot {
	return rb.GetLatest(rb.size)
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *RingBuffer) Size() int {
	return rb.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity
func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}

// -----------------------------------------------------------------------------

// Resize changes the capacity of the buffer.
// If newCapacity < size, oldest data is dropped.
func (rb *RingBuffer) Resize(newCapacity int) {
	if newCapacity <= 0 || newCapacity == rb.capacity {
		return
	}

	kept := rb.GetLatest(newCapacity)
	rb.data = make([]models.MBreadthSnapshot, newCapacity)
	copy(rb.data, kept)
	rb.capacity = newCapacity
	rb.size = len(kept)
	rb.index = rb.size % newCapacity
}

// -----------------------------------------------------------------------------

// IsFull returns whether buffer is full
func (rb *RingBuffer) IsFull() bool {
	return rb.size == rb.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (rb *RingBuffer) Clear() {
	clear(rb.data)
	rb.index = 0
	rb.size = 0
}
