package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appinv "github.com/usv008/pizza-inventory-system-sub002/internal/application/inventory"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/catalog"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/inventory"
)

type testEnv struct {
	db           *gorm.DB
	batches      *GormProductionBatchRepository
	products     *GormProductRepository
	movements    *GormStockMovementRepository
	batchSvc     *appinv.BatchService
	reservations *appinv.ReservationService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	scope := NewGormTransactionScope(db)
	batches := NewGormProductionBatchRepository(db)
	products := NewGormProductRepository(db)

	return &testEnv{
		db:           db,
		batches:      batches,
		products:     products,
		movements:    NewGormStockMovementRepository(db),
		batchSvc:     appinv.NewBatchService(scope, batches, products, zap.NewNop()),
		reservations: appinv.NewReservationService(scope, batches, NewGormWriteoffRepository(db), zap.NewNop()),
	}
}

func (e *testEnv) createProduct(t *testing.T, piecesPerBox int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("Pizza Margherita", "PM-"+uuid.New().String()[:8], piecesPerBox)
	require.NoError(t, err)
	require.NoError(t, e.products.Save(context.Background(), product))
	return product
}

func daysAgo(days int) time.Time {
	t := time.Now().AddDate(0, 0, -days)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func TestProductionIntake_AccumulatesByBatchDate(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	product := env.createProduct(t, 10)
	batchDate := daysAgo(1)

	_, err := env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 10, BatchDate: batchDate,
	})
	require.NoError(t, err)

	view, err := env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 5, BatchDate: batchDate,
	})
	require.NoError(t, err)

	// one batch, accumulated
	assert.Equal(t, 15, view.TotalQuantity)
	assert.Equal(t, 15, view.AvailableQuantity)

	all, err := env.batches.FindByProduct(ctx, product.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// product aggregate and ledger agree
	updated, err := env.products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, updated.StockPieces)

	sum, err := env.movements.SumPiecesByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, sum)
}

func TestReservationLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	product := env.createProduct(t, 12)

	_, err := env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 100, BatchDate: daysAgo(2),
	})
	require.NoError(t, err)

	preview, err := env.reservations.AllocateForProduct(ctx, product.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, preview.QuantityReserved)
	assert.False(t, preview.HasShortage())

	result, err := env.reservations.Reserve(ctx, appinv.ReserveCommand{
		ProductID: product.ID, Quantity: 30,
	})
	require.NoError(t, err)
	require.Len(t, result.AllocatedBatches, 1)

	batch, err := env.batches.FindByID(ctx, *result.AllocatedBatches[0].BatchID)
	require.NoError(t, err)
	assert.Equal(t, 70, batch.AvailableQuantity)
	assert.Equal(t, 30, batch.ReservedQuantity)

	released, err := env.reservations.Release(ctx, appinv.ReleaseCommand{
		Releases: result.AllocatedBatches.ReleaseTuples(),
	})
	require.NoError(t, err)
	assert.Equal(t, 30, released)

	batch, err = env.batches.FindByID(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, batch.AvailableQuantity)
	assert.Equal(t, 0, batch.ReservedQuantity)

	view, err := env.reservations.WriteoffBatch(ctx, appinv.WriteoffCommand{
		BatchID: batch.ID, Quantity: 40, Reason: "spoilage", Responsible: "qa",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, view.Boxes)
	assert.Equal(t, 4, view.Pieces)
	assert.Equal(t, 60, view.BatchRemaining)

	updated, err := env.products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, updated.StockPieces)
}

func TestReserve_SpansBatchesOldestFirst(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	product := env.createProduct(t, 10)

	for _, intake := range []struct {
		days int
		qty  int
	}{{10, 5}, {5, 10}, {1, 20}} {
		_, err := env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
			ProductID: product.ID, Quantity: intake.qty, BatchDate: daysAgo(intake.days),
		})
		require.NoError(t, err)
	}

	result, err := env.reservations.Reserve(ctx, appinv.ReserveCommand{
		ProductID: product.ID, Quantity: 12,
	})
	require.NoError(t, err)

	require.Len(t, result.AllocatedBatches, 2)
	assert.Equal(t, 5, result.AllocatedBatches[0].Quantity)
	assert.Equal(t, 7, result.AllocatedBatches[1].Quantity)
	assert.True(t, result.AllocatedBatches[0].BatchDate.Before(*result.AllocatedBatches[1].BatchDate))
}

func TestReserve_InsufficientStockRollsBack(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	product := env.createProduct(t, 10)

	for _, intake := range []struct {
		days int
		qty  int
	}{{3, 5}, {1, 3}} {
		_, err := env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
			ProductID: product.ID, Quantity: intake.qty, BatchDate: daysAgo(intake.days),
		})
		require.NoError(t, err)
	}

	_, err := env.reservations.Reserve(ctx, appinv.ReserveCommand{
		ProductID: product.ID, Quantity: 1000,
	})
	require.Error(t, err)

	// nothing was reserved on any batch
	all, findErr := env.batches.FindByProduct(ctx, product.ID, true)
	require.NoError(t, findErr)
	for _, b := range all {
		assert.Equal(t, 0, b.ReservedQuantity)
	}
}

func TestRelease_ToleratesMissingBatches(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	product := env.createProduct(t, 10)

	_, err := env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 50, BatchDate: daysAgo(1),
	})
	require.NoError(t, err)

	result, err := env.reservations.Reserve(ctx, appinv.ReserveCommand{
		ProductID: product.ID, Quantity: 20,
	})
	require.NoError(t, err)
	batchID := *result.AllocatedBatches[0].BatchID

	released, err := env.reservations.Release(ctx, appinv.ReleaseCommand{
		Releases: []inventory.ReleaseRequest{
			{BatchID: uuid.New(), Quantity: 10}, // no such batch
			{BatchID: batchID, Quantity: 20},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 20, released)

	batch, err := env.batches.FindByID(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, 50, batch.AvailableQuantity)
}

func TestRelease_ClampsOverRelease(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	product := env.createProduct(t, 10)

	_, err := env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 50, BatchDate: daysAgo(1),
	})
	require.NoError(t, err)

	result, err := env.reservations.Reserve(ctx, appinv.ReserveCommand{
		ProductID: product.ID, Quantity: 15,
	})
	require.NoError(t, err)
	batchID := *result.AllocatedBatches[0].BatchID

	released, err := env.reservations.Release(ctx, appinv.ReleaseCommand{
		Releases: []inventory.ReleaseRequest{{BatchID: batchID, Quantity: 999}},
	})
	require.NoError(t, err)
	assert.Equal(t, 15, released)

	batch, err := env.batches.FindByID(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, 50, batch.AvailableQuantity)
	assert.Equal(t, 0, batch.ReservedQuantity)
}

func TestWriteoff_MovementAndDecomposition(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	product := env.createProduct(t, 12)

	_, err := env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 100, BatchDate: daysAgo(1),
	})
	require.NoError(t, err)

	all, err := env.batches.FindByProduct(ctx, product.ID, true)
	require.NoError(t, err)
	require.Len(t, all, 1)

	view, err := env.reservations.WriteoffBatch(ctx, appinv.WriteoffCommand{
		BatchID: all[0].ID, Quantity: 25, Reason: "damage", Responsible: "shift lead",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Boxes)
	assert.Equal(t, 1, view.Pieces)

	// ledger carries the signed delta
	sum, err := env.movements.SumPiecesByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, sum)

	batch, err := env.batches.FindByID(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 75, batch.TotalQuantity)
	assert.Equal(t, 75, batch.AvailableQuantity)
}

func TestGetProductAvailability_Projection(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	product := env.createProduct(t, 10)
	require.NoError(t, product.SetMinStock(50))
	require.NoError(t, env.products.Save(ctx, product))

	_, err := env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 60, BatchDate: daysAgo(1),
	})
	require.NoError(t, err)

	_, err = env.reservations.Reserve(ctx, appinv.ReserveCommand{
		ProductID: product.ID, Quantity: 20,
	})
	require.NoError(t, err)

	view, err := env.batchSvc.GetProductAvailability(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, view.TotalAvailable)
	assert.Equal(t, 20, view.TotalReserved)
	// 40 < min stock 50
	assert.Equal(t, catalog.StockStatusLow, view.StockStatus)
}

func TestArrivalDocument_PartialSuccess(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	product := env.createProduct(t, 10)

	view, err := env.batchSvc.PostArrivalDocument(ctx, appinv.ArrivalDocumentCommand{
		DocumentNumber: "ARR-001",
		ArrivalDate:    daysAgo(0),
		Items: []appinv.ArrivalItemCommand{
			{ProductID: product.ID, Quantity: 30},
			{ProductID: uuid.New(), Quantity: 10},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, view.Processed)
	assert.Equal(t, 1, view.Failed)
	require.Len(t, view.Items, 2)
	require.NotNil(t, view.Items[0].Batch)
	assert.Equal(t, 30, view.Items[0].Batch.AvailableQuantity)
	assert.NotEmpty(t, view.Items[1].Error)

	// the good line landed despite the bad one
	stored, err := env.products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, stored.StockPieces)
}

func TestGetProductAvailability_ExpiryBuckets(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	product := env.createProduct(t, 10)

	expired := daysAgo(5)
	expiring := daysAgo(-3)

	_, err := env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 7, BatchDate: daysAgo(30), ExpiryDate: &expired,
	})
	require.NoError(t, err)
	_, err = env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 20, BatchDate: daysAgo(10), ExpiryDate: &expiring,
	})
	require.NoError(t, err)
	_, err = env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 50, BatchDate: daysAgo(1),
	})
	require.NoError(t, err)

	view, err := env.batchSvc.GetProductAvailability(ctx, product.ID)
	require.NoError(t, err)

	// expired stock stays out of the sellable total
	assert.Equal(t, 70, view.TotalAvailable)
	assert.Equal(t, 2, view.ActiveBatches)
	assert.Equal(t, 20, view.ExpiringQuantity)
	assert.Equal(t, 7, view.ExpiredQuantity)
	require.Len(t, view.Batches, 3)
}

func TestListExpiring_WindowParameter(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	product := env.createProduct(t, 10)

	expiry := daysAgo(-10)
	_, err := env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 25, BatchDate: daysAgo(1), ExpiryDate: &expiry,
	})
	require.NoError(t, err)

	// outside the default window
	views, err := env.batchSvc.ListExpiring(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, views)

	views, err = env.batchSvc.ListExpiring(ctx, 14)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 10, views[0].DaysToExpiry)
	assert.Equal(t, "medium", views[0].Urgency)
}

func TestListGrouped_ProjectsGroupSummary(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	product := env.createProduct(t, 10)

	soon := daysAgo(-3)
	oldDate := daysAgo(10)
	newDate := daysAgo(1)

	_, err := env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 30, BatchDate: oldDate, ExpiryDate: &soon,
	})
	require.NoError(t, err)
	_, err = env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 20, BatchDate: newDate,
	})
	require.NoError(t, err)

	views, err := env.batchSvc.ListGrouped(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)

	group := views[0]
	assert.Equal(t, product.Name, group.ProductName)
	assert.Equal(t, 50, group.TotalAvailable)
	assert.Equal(t, 30, group.ExpiringQuantity)
	require.NotNil(t, group.OldestBatchDate)
	require.NotNil(t, group.NewestBatchDate)
	assert.Equal(t, oldDate.Format("2006-01-02"), group.OldestBatchDate.Format("2006-01-02"))
	assert.Equal(t, newDate.Format("2006-01-02"), group.NewestBatchDate.Format("2006-01-02"))
	assert.Equal(t, catalog.StockStatusGood, group.StockStatus)
}

func TestReconcileProduct_DetectsAndCorrectsDrift(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	product := env.createProduct(t, 10)

	_, err := env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 50, BatchDate: daysAgo(1),
	})
	require.NoError(t, err)

	// knock the aggregate out of sync with the ledger
	require.NoError(t, env.db.Model(&catalog.Product{}).
		Where("id = ?", product.ID).
		Update("stock_pieces", 45).Error)

	movementSvc := appinv.NewMovementService(
		NewGormTransactionScope(env.db), env.movements, env.products, zap.NewNop())

	result, err := movementSvc.ReconcileProduct(ctx, product.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 45, result.StockPieces)
	assert.Equal(t, 50, result.LedgerPieces)
	assert.Equal(t, -5, result.Drift)
	assert.False(t, result.Corrected)

	// a dry run leaves the aggregate untouched
	stored, err := env.products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 45, stored.StockPieces)

	result, err = movementSvc.ReconcileProduct(ctx, product.ID, true)
	require.NoError(t, err)
	assert.True(t, result.Corrected)

	stored, err = env.products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, stored.StockPieces)
}
