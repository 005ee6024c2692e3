package interfaces

import (
	"time"

	"market-breadth/src/models"
)

// -----------------------------------------------------------------------------
// ISnapshotStore defines the contract for snapshot history storage.
// -----------------------------------------------------------------------------

type ISnapshotStore interface {

	// Initialize prepares files, schema or tables.
	Initialize() error

	// SaveSnapshot appends one snapshot.
	SaveSnapshot(s models.MBreadthSnapshot) error

	// QueryRange returns snapshots whose market-local date lies in
	// [start, end] (both inclusive, compared by calendar day), oldest first.
	QueryRange(start, end time.Time) ([]models.MBreadthSnapshot, error)

	// Latest returns the most recent snapshot, or nil when the store is empty.
	Latest() (*models.MBreadthSnapshot, error)

	// CleanupOldData removes data older than the retention policy.
	CleanupOldData() error

	// Close releases resources.
	Close() error
}

// -----------------------------------------------------------------------------
// IFileLister is implemented by stores backed by data files.
// -----------------------------------------------------------------------------

type IFileLister interface {
	ListDataFiles() ([]string, error)
}
