package interfaces

import "imbalance-screener/src/models"

// -----------------------------------------------------------------------------
// IScanStore defines the contract for persisting emitted imbalance results.
// The evaluator never reads this store; it is a write-behind record feeding
// the history endpoint.
// -----------------------------------------------------------------------------

type IScanStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the schema.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveResults inserts the matches of one scan tick.
	SaveResults(results []models.MImbalanceResult) error

	// -----------------------------------------------------------------------------

	// RecentResults returns up to limit most recent matches, newest first.
	RecentResults(limit int) ([]models.MImbalanceResult, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData removes matches older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the store
	Close() error
}
