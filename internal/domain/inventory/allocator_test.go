package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBatch(t *testing.T, batchDate time.Time, available int) ProductionBatch {
	t.Helper()
	batch, err := NewProductionBatch(uuid.New(), batchDate, batchDate.AddDate(1, 0, 0), available)
	require.NoError(t, err)
	return *batch
}

func TestFIFOAllocator_OldestFirst(t *testing.T) {
	today := date(2026, 3, 10)
	allocator := NewFIFOAllocator()

	old := makeBatch(t, date(2026, 3, 1), 30)
	mid := makeBatch(t, date(2026, 3, 5), 50)
	fresh := makeBatch(t, date(2026, 3, 9), 100)

	// deliberately out of order
	result, err := allocator.Allocate([]ProductionBatch{fresh, old, mid}, 60, today)
	require.NoError(t, err)

	assert.Equal(t, 60, result.QuantityReserved)
	assert.False(t, result.HasShortage())
	require.Len(t, result.AllocatedBatches, 2)

	assert.Equal(t, old.ID, *result.AllocatedBatches[0].BatchID)
	assert.Equal(t, 30, result.AllocatedBatches[0].Quantity)
	assert.Equal(t, mid.ID, *result.AllocatedBatches[1].BatchID)
	assert.Equal(t, 30, result.AllocatedBatches[1].Quantity)
}

func TestFIFOAllocator_CreatedAtBreaksTies(t *testing.T) {
	today := date(2026, 3, 10)
	allocator := NewFIFOAllocator()

	first := makeBatch(t, date(2026, 3, 1), 10)
	second := makeBatch(t, date(2026, 3, 1), 10)
	first.CreatedAt = date(2026, 3, 1).Add(8 * time.Hour)
	second.CreatedAt = date(2026, 3, 1).Add(9 * time.Hour)

	result, err := allocator.Allocate([]ProductionBatch{second, first}, 15, today)
	require.NoError(t, err)

	require.Len(t, result.AllocatedBatches, 2)
	assert.Equal(t, first.ID, *result.AllocatedBatches[0].BatchID)
	assert.Equal(t, 10, result.AllocatedBatches[0].Quantity)
	assert.Equal(t, second.ID, *result.AllocatedBatches[1].BatchID)
	assert.Equal(t, 5, result.AllocatedBatches[1].Quantity)
}

func TestFIFOAllocator_ShortageMarker(t *testing.T) {
	today := date(2026, 3, 10)
	allocator := NewFIFOAllocator()

	only := makeBatch(t, date(2026, 3, 1), 40)

	result, err := allocator.Allocate([]ProductionBatch{only}, 100, today)
	require.NoError(t, err)

	assert.Equal(t, 40, result.QuantityReserved)
	assert.Equal(t, 60, result.Shortage)
	assert.True(t, result.HasShortage())

	require.Len(t, result.AllocatedBatches, 2)
	marker := result.AllocatedBatches[1]
	assert.Nil(t, marker.BatchID)
	assert.True(t, marker.Shortage)
	assert.Equal(t, 60, marker.Quantity)
}

func TestFIFOAllocator_SkipsIneligibleBatches(t *testing.T) {
	today := date(2026, 3, 10)
	allocator := NewFIFOAllocator()

	expired := makeBatch(t, date(2025, 3, 1), 50)
	expired.ExpiryDate = date(2026, 3, 9)
	empty := makeBatch(t, date(2026, 3, 2), 10)
	empty.AvailableQuantity = 0
	good := makeBatch(t, date(2026, 3, 5), 20)

	result, err := allocator.Allocate([]ProductionBatch{expired, empty, good}, 20, today)
	require.NoError(t, err)

	require.Len(t, result.AllocatedBatches, 1)
	assert.Equal(t, good.ID, *result.AllocatedBatches[0].BatchID)
	assert.Equal(t, 20, result.AllocatedBatches[0].Quantity)
}

func TestFIFOAllocator_NoStockAtAll(t *testing.T) {
	today := date(2026, 3, 10)
	allocator := NewFIFOAllocator()

	result, err := allocator.Allocate(nil, 25, today)
	require.NoError(t, err)

	assert.Equal(t, 0, result.QuantityReserved)
	assert.Equal(t, 25, result.Shortage)
	require.Len(t, result.AllocatedBatches, 1)
	assert.True(t, result.AllocatedBatches[0].IsShortage())
}

func TestFIFOAllocator_RejectsNonPositiveQuantity(t *testing.T) {
	allocator := NewFIFOAllocator()

	_, err := allocator.Allocate(nil, 0, date(2026, 3, 10))
	assert.Error(t, err)

	_, err = allocator.Allocate(nil, -3, date(2026, 3, 10))
	assert.Error(t, err)
}
