package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appinv "github.com/usv008/pizza-inventory-system-sub002/internal/application/inventory"
	apptrade "github.com/usv008/pizza-inventory-system-sub002/internal/application/trade"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/inventory"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/trade"
)

func setupOrderService(t *testing.T, env *testEnv) *apptrade.OrderService {
	t.Helper()
	scope := NewGormTransactionScope(env.db)
	orders := NewGormOrderRepository(env.db)
	return apptrade.NewOrderService(scope, orders, env.reservations, zap.NewNop())
}

func TestOrderCreate_ReservesAndPersistsAllocation(t *testing.T) {
	env := setupTestEnv(t)
	orderSvc := setupOrderService(t, env)
	ctx := context.Background()
	product := env.createProduct(t, 10)

	_, err := env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 50, BatchDate: daysAgo(1),
	})
	require.NoError(t, err)

	view, err := orderSvc.Create(ctx, apptrade.CreateOrderCommand{
		ClientName: "Trattoria Roma",
		Items:      []apptrade.OrderItemInput{{ProductID: product.ID, Quantity: 30}},
	})
	require.NoError(t, err)
	assert.Empty(t, view.Warnings)
	require.Len(t, view.Order.Items, 1)

	item := view.Order.Items[0]
	assert.Equal(t, 3, item.Boxes)
	assert.Equal(t, 0, item.Pieces)
	assert.Equal(t, 30, item.AllocatedBatches.Reserved())

	// reservation landed on the batch
	batches, err := env.batches.FindByProduct(ctx, product.ID, true)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 20, batches[0].AvailableQuantity)
	assert.Equal(t, 30, batches[0].ReservedQuantity)

	// allocation survives a round trip through storage
	stored, err := orderSvc.Get(ctx, view.Order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 30, stored.Items[0].AllocatedBatches.Reserved())
}

func TestOrderCreate_ShortageKeepsPartialReservation(t *testing.T) {
	env := setupTestEnv(t)
	orderSvc := setupOrderService(t, env)
	ctx := context.Background()
	product := env.createProduct(t, 10)

	_, err := env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 8, BatchDate: daysAgo(1),
	})
	require.NoError(t, err)

	view, err := orderSvc.Create(ctx, apptrade.CreateOrderCommand{
		ClientName: "Pizzeria Blu",
		Items:      []apptrade.OrderItemInput{{ProductID: product.ID, Quantity: 15}},
	})
	require.NoError(t, err)
	require.Len(t, view.Warnings, 1)

	item := view.Order.Items[0]
	assert.Equal(t, 8, item.AllocatedBatches.Reserved())
	assert.Equal(t, 7, item.AllocatedBatches.Shortage())
}

func TestOrderCancel_ReleasesReservations(t *testing.T) {
	env := setupTestEnv(t)
	orderSvc := setupOrderService(t, env)
	ctx := context.Background()
	product := env.createProduct(t, 10)

	_, err := env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 50, BatchDate: daysAgo(1),
	})
	require.NoError(t, err)

	view, err := orderSvc.Create(ctx, apptrade.CreateOrderCommand{
		ClientName: "Trattoria Roma",
		Items:      []apptrade.OrderItemInput{{ProductID: product.ID, Quantity: 20}},
	})
	require.NoError(t, err)

	cancelled, err := orderSvc.Cancel(ctx, view.Order.ID, "manager")
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusCancelled, cancelled.Status)

	batches, err := env.batches.FindByProduct(ctx, product.ID, true)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 50, batches[0].AvailableQuantity)
	assert.Equal(t, 0, batches[0].ReservedQuantity)

	// cancelling twice is rejected
	_, err = orderSvc.Cancel(ctx, view.Order.ID, "manager")
	assert.Error(t, err)
}

func TestOrderUpdateItems_RebuildsReservations(t *testing.T) {
	env := setupTestEnv(t)
	orderSvc := setupOrderService(t, env)
	ctx := context.Background()
	product := env.createProduct(t, 10)

	_, err := env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 50, BatchDate: daysAgo(1),
	})
	require.NoError(t, err)

	view, err := orderSvc.Create(ctx, apptrade.CreateOrderCommand{
		ClientName: "Trattoria Roma",
		Items:      []apptrade.OrderItemInput{{ProductID: product.ID, Quantity: 40}},
	})
	require.NoError(t, err)

	updated, err := orderSvc.UpdateItems(ctx, view.Order.ID, apptrade.UpdateOrderItemsCommand{
		Items: []apptrade.OrderItemInput{{ProductID: product.ID, Quantity: 10}},
	})
	require.NoError(t, err)
	require.Len(t, updated.Order.Items, 1)
	assert.Equal(t, 10, updated.Order.Items[0].AllocatedBatches.Reserved())

	batches, err := env.batches.FindByProduct(ctx, product.ID, true)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 40, batches[0].AvailableQuantity)
	assert.Equal(t, 10, batches[0].ReservedQuantity)
}

func TestOrderShip_ConsumesReservations(t *testing.T) {
	env := setupTestEnv(t)
	orderSvc := setupOrderService(t, env)
	ctx := context.Background()
	product := env.createProduct(t, 10)

	_, err := env.batchSvc.PostProduction(ctx, appinv.ProductionCommand{
		ProductID: product.ID, Quantity: 50, BatchDate: daysAgo(1),
	})
	require.NoError(t, err)

	view, err := orderSvc.Create(ctx, apptrade.CreateOrderCommand{
		ClientName: "Trattoria Roma",
		Items:      []apptrade.OrderItemInput{{ProductID: product.ID, Quantity: 30}},
	})
	require.NoError(t, err)

	confirmed, err := orderSvc.UpdateStatus(ctx, view.Order.ID, apptrade.UpdateStatusCommand{
		Status: trade.OrderStatusConfirmed,
	})
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusConfirmed, confirmed.Status)

	shipped, err := orderSvc.UpdateStatus(ctx, view.Order.ID, apptrade.UpdateStatusCommand{
		Status: trade.OrderStatusShipped,
	})
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusShipped, shipped.Status)

	// reserved stock left the batch for good
	batches, err := env.batches.FindByProduct(ctx, product.ID, true)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 20, batches[0].TotalQuantity)
	assert.Equal(t, 20, batches[0].AvailableQuantity)
	assert.Equal(t, 0, batches[0].ReservedQuantity)

	// product aggregate and ledger follow
	stored, err := env.products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, stored.StockPieces)

	ledger, err := env.movements.SumPiecesByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, ledger)

	movements, err := env.movements.FindByProduct(ctx, product.ID, shared.DefaultFilter())
	require.NoError(t, err)
	var outPieces int
	for _, m := range movements {
		if m.MovementType == inventory.MovementTypeOut {
			outPieces += m.Pieces
		}
	}
	assert.Equal(t, -30, outPieces)

	// a shipped order is final
	_, err = orderSvc.UpdateStatus(ctx, view.Order.ID, apptrade.UpdateStatusCommand{
		Status: trade.OrderStatusShipped,
	})
	require.Error(t, err)
	_, err = orderSvc.Cancel(ctx, view.Order.ID, "tester")
	require.Error(t, err)
}
