package storage

import "imbalance-screener/src/models"

// -----------------------------------------------------------------------------

// NoopStore keeps the pipeline runnable with storage disabled
// (storage.db_type "none"). History queries return nothing.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Initialize() error { return nil }

func (n *NoopStore) SaveResults(results []models.MImbalanceResult) error { return nil }

func (n *NoopStore) RecentResults(limit int) ([]models.MImbalanceResult, error) {
	return nil, nil
}

func (n *NoopStore) CleanupOldData() error { return nil }

func (n *NoopStore) Close() error { return nil }
