package interfaces

import (
	"context"

	"market-breadth/src/models"
)

// -----------------------------------------------------------------------------
// ISnapshotSink publishes snapshots to external systems.
// -----------------------------------------------------------------------------

type ISnapshotSink interface {
	Name() string
	Publish(ctx context.Context, s models.MBreadthSnapshot) error
	Close() error
}
