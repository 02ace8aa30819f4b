package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/inventory"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
)

func mustBatch(t *testing.T, productID uuid.UUID, batchDate, expiry time.Time, qty int) *inventory.ProductionBatch {
	t.Helper()
	batch, err := inventory.NewProductionBatch(productID, batchDate, expiry, qty)
	require.NoError(t, err)
	return batch
}

func TestGormProductionBatchRepository_FindAllocatableOrder(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	productID := uuid.New()
	today := time.Now()

	newest := mustBatch(t, productID, daysAgo(1), time.Time{}, 10)
	oldest := mustBatch(t, productID, daysAgo(9), time.Time{}, 10)
	middle := mustBatch(t, productID, daysAgo(5), time.Time{}, 10)

	for _, b := range []*inventory.ProductionBatch{newest, oldest, middle} {
		require.NoError(t, env.batches.Save(ctx, b))
	}

	found, err := env.batches.FindAllocatable(ctx, productID, today)
	require.NoError(t, err)

	require.Len(t, found, 3)
	assert.Equal(t, oldest.ID, found[0].ID)
	assert.Equal(t, middle.ID, found[1].ID)
	assert.Equal(t, newest.ID, found[2].ID)
}

func TestGormProductionBatchRepository_FindAllocatableExclusions(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	productID := uuid.New()
	today := time.Now()

	good := mustBatch(t, productID, daysAgo(3), time.Time{}, 10)

	expired := mustBatch(t, productID, daysAgo(8), time.Time{}, 10)
	expired.ExpiryDate = daysAgo(1)

	drained := mustBatch(t, productID, daysAgo(4), time.Time{}, 10)
	drained.AvailableQuantity = 0

	other := mustBatch(t, uuid.New(), daysAgo(2), time.Time{}, 10)

	for _, b := range []*inventory.ProductionBatch{good, expired, drained, other} {
		require.NoError(t, env.batches.Save(ctx, b))
	}

	found, err := env.batches.FindAllocatable(ctx, productID, today)
	require.NoError(t, err)

	require.Len(t, found, 1)
	assert.Equal(t, good.ID, found[0].ID)
}

func TestGormProductionBatchRepository_FindByProductAndDate(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	productID := uuid.New()
	batchDate := daysAgo(2)

	batch := mustBatch(t, productID, batchDate, time.Time{}, 10)
	require.NoError(t, env.batches.Save(ctx, batch))

	found, err := env.batches.FindByProductAndDate(ctx, productID, batchDate)
	require.NoError(t, err)
	assert.Equal(t, batch.ID, found.ID)

	_, err = env.batches.FindByProductAndDate(ctx, productID, daysAgo(7))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductionBatchRepository_FindExpiring(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	productID := uuid.New()

	soon := mustBatch(t, productID, daysAgo(300), time.Time{}, 10)
	soon.ExpiryDate = time.Now().AddDate(0, 0, 3)

	far := mustBatch(t, productID, daysAgo(10), time.Time{}, 10)

	gone := mustBatch(t, productID, daysAgo(400), time.Time{}, 10)
	gone.ExpiryDate = daysAgo(5)

	for _, b := range []*inventory.ProductionBatch{soon, far, gone} {
		require.NoError(t, env.batches.Save(ctx, b))
	}

	found, err := env.batches.FindExpiring(ctx, 7*24*time.Hour)
	require.NoError(t, err)

	require.Len(t, found, 1)
	assert.Equal(t, soon.ID, found[0].ID)
}

func TestGormProductionBatchRepository_FindProductIDsWithBatches(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	p1 := uuid.New()
	p2 := uuid.New()

	require.NoError(t, env.batches.Save(ctx, mustBatch(t, p1, daysAgo(1), time.Time{}, 5)))
	require.NoError(t, env.batches.Save(ctx, mustBatch(t, p1, daysAgo(2), time.Time{}, 5)))
	require.NoError(t, env.batches.Save(ctx, mustBatch(t, p2, daysAgo(1), time.Time{}, 5)))

	ids, err := env.batches.FindProductIDsWithBatches(ctx)
	require.NoError(t, err)

	assert.Len(t, ids, 2)
	assert.Contains(t, ids, p1)
	assert.Contains(t, ids, p2)
}

func TestGormProductionBatchRepository_SaveWithLockRejectsStaleVersion(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	batch := mustBatch(t, uuid.New(), daysAgo(1), time.Time{}, 100)
	require.NoError(t, env.batches.Save(ctx, batch))

	first, err := env.batches.FindByID(ctx, batch.ID)
	require.NoError(t, err)
	second, err := env.batches.FindByID(ctx, batch.ID)
	require.NoError(t, err)

	// two writers reserve against the same snapshot
	require.NoError(t, first.Reserve(80))
	require.NoError(t, env.batches.SaveWithLock(ctx, first))
	assert.Equal(t, 2, first.Version)

	require.NoError(t, second.Reserve(80))
	err = env.batches.SaveWithLock(ctx, second)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "OPTIMISTIC_LOCK_ERROR", domainErr.Code)

	// only the first writer's counters are committed
	stored, err := env.batches.FindByID(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, stored.AvailableQuantity)
	assert.Equal(t, 80, stored.ReservedQuantity)
	assert.Equal(t, 2, stored.Version)
}
