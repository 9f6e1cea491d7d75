package utils

import (
	"testing"

	"imbalance-screener/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func snap(ts int64) *models.MScanSnapshot {
	return &models.MScanSnapshot{Timestamp: ts}
}

// -----------------------------------------------------------------------------

func TestSnapshotRing_Empty(t *testing.T) {
	r := NewSnapshotRing(3)
	assert.Nil(t, r.Latest())
	assert.Empty(t, r.Recent(10))
	assert.Equal(t, 0, r.Len())
}

// -----------------------------------------------------------------------------

func TestSnapshotRing_PushAndLatest(t *testing.T) {
	r := NewSnapshotRing(3)
	r.Push(snap(1))
	r.Push(snap(2))

	require.NotNil(t, r.Latest())
	assert.Equal(t, int64(2), r.Latest().Timestamp)
	assert.Equal(t, 2, r.Len())
}

// -----------------------------------------------------------------------------

func TestSnapshotRing_EvictsOldest(t *testing.T) {
	r := NewSnapshotRing(3)
	for i := int64(1); i <= 5; i++ {
		r.Push(snap(i))
	}

	assert.Equal(t, 3, r.Len())

	recent := r.Recent(0)
	require.Len(t, recent, 3)
	// Newest first, snapshot 1 and 2 evicted.
	assert.Equal(t, int64(5), recent[0].Timestamp)
	assert.Equal(t, int64(4), recent[1].Timestamp)
	assert.Equal(t, int64(3), recent[2].Timestamp)
}

// -----------------------------------------------------------------------------

func TestSnapshotRing_RecentLimit(t *testing.T) {
	r := NewSnapshotRing(5)
	for i := int64(1); i <= 4; i++ {
		r.Push(snap(i))
	}

	recent := r.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(4), recent[0].Timestamp)
	assert.Equal(t, int64(3), recent[1].Timestamp)
}

// -----------------------------------------------------------------------------

func TestSnapshotRing_MinimumCapacity(t *testing.T) {
	r := NewSnapshotRing(0)
	r.Push(snap(1))
	r.Push(snap(2))

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, int64(2), r.Latest().Timestamp)
}
