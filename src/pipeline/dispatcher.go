package pipeline

import (
	"context"
	"time"

	"market-breadth/src/interfaces"
	"market-breadth/src/logger"
	"market-breadth/src/models"
	"market-breadth/src/utils"
)

const sinkTimeout = 5 * time.Second

// -----------------------------------------------------------------------------
// Dispatcher fans each snapshot out to the store, the live series, the
// WebSocket clients and every sink, then runs retention cleanup.
// -----------------------------------------------------------------------------

type Dispatcher struct {
	Store     interfaces.ISnapshotStore
	Live      *utils.LiveSeries
	Exchanger interfaces.IDataExchanger // may be nil
	Sinks     []interfaces.ISnapshotSink
	Logger    *logger.Logger
}

// -----------------------------------------------------------------------------

// Handle processes one snapshot. Failures are logged; none stops the chain.
func (d *Dispatcher) Handle(ctx context.Context, snap models.MBreadthSnapshot) {
	if d.Store != nil {
		if err := d.Store.SaveSnapshot(snap); err != nil {
			d.Logger.Error("Failed to save snapshot: %v", err)
		}
	}

	if d.Live != nil {
		d.Live.Add(snap)
	}

	if d.Exchanger != nil {
		d.Exchanger.Broadcast(snap)
	}

	for _, sink := range d.Sinks {
		sctx, cancel := context.WithTimeout(ctx, sinkTimeout)
		if err := sink.Publish(sctx, snap); err != nil {
			d.Logger.Warning("Sink %s failed: %v", sink.Name(), err)
		}
		cancel()
	}

	if d.Store != nil {
		if err := d.Store.CleanupOldData(); err != nil {
			d.Logger.Warning("Cleanup failed: %v", err)
		}
	}
}

// -----------------------------------------------------------------------------

// Run handles snapshots until the channel closes or ctx is done.
func (d *Dispatcher) Run(ctx context.Context, in <-chan models.MBreadthSnapshot) {
	d.Logger.Info("Starting dispatch loop...")
	for {
		select {
		case snap, ok := <-in:
			if !ok {
				d.Logger.Info("Snapshot channel closed.")
				return
			}
			d.Handle(ctx, snap)
		case <-ctx.Done():
			d.Logger.Info("Dispatch loop stopped.")
			return
		}
	}
}

// -----------------------------------------------------------------------------

// Close releases every sink.
func (d *Dispatcher) Close() {
	for _, sink := range d.Sinks {
		if err := sink.Close(); err != nil {
			d.Logger.Warning("Closing sink %s: %v", sink.Name(), err)
		}
	}
}
