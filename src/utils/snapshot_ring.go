package utils

import (
	"sync"

	"imbalance-screener/src/models"
)

// -----------------------------------------------------------------------------

// SnapshotRing keeps the most recent scan snapshots in a fixed-capacity ring.
// The server reads it to serve recent ticks without touching storage.
type SnapshotRing struct {
	mu       sync.RWMutex
	items    []*models.MScanSnapshot
	capacity int
	head     int
	size     int
}

// -----------------------------------------------------------------------------

func NewSnapshotRing(capacity int) *SnapshotRing {
	if capacity < 1 {
		capacity = 1
	}
	return &SnapshotRing{
		items:    make([]*models.MScanSnapshot, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Push appends a snapshot, evicting the oldest when full.
func (r *SnapshotRing) Push(s *models.MScanSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[r.head] = s
	r.head = (r.head + 1) % r.capacity
	if r.size < r.capacity {
		r.size++
	}
}

// -----------------------------------------------------------------------------

// Latest returns the most recent snapshot, or nil when empty.
func (r *SnapshotRing) Latest() *models.MScanSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.size == 0 {
		return nil
	}
	idx := (r.head - 1 + r.capacity) % r.capacity
	return r.items[idx]
}

// -----------------------------------------------------------------------------

// Recent returns up to limit snapshots, newest first.
func (r *SnapshotRing) Recent(limit int) []*models.MScanSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > r.size {
		limit = r.size
	}

	out := make([]*models.MScanSnapshot, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (r.head - 1 - i + 2*r.capacity) % r.capacity
		out = append(out, r.items[idx])
	}
	return out
}

// -----------------------------------------------------------------------------

// Len returns the number of stored snapshots.
func (r *SnapshotRing) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}
