package interfaces

import "market-breadth/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger shares snapshots with live consumers (Server/Push).
// -----------------------------------------------------------------------------

type IDataExchanger interface {

	// Broadcast pushes a new snapshot to every connected client.
	Broadcast(s models.MBreadthSnapshot)

	// Start the server
	Start() error

	// Stop the server gracefully
	Stop() error
}
