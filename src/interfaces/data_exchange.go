package interfaces

import "imbalance-screener/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defines the interface for sharing scan output with browsers.
// -----------------------------------------------------------------------------

type IDataExchanger interface {

	// -----------------------------------------------------------------------------

	// Broadcast pushes a scan snapshot to all connected clients and updates
	// the server's latest-state cache.
	Broadcast(snapshot *models.MScanSnapshot)

	// -----------------------------------------------------------------------------

	// Start the server (blocking)
	Start() error

	// -----------------------------------------------------------------------------

	// Stop the server gracefully
	Stop() error
}
