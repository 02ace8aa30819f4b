package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/catalog"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/inventory"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
)

// ReconciliationResult reports the drift between a product's aggregate
// stock counter and the sum of its movement deltas.
type ReconciliationResult struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	StockPieces  int       `json:"stock_pieces"`
	LedgerPieces int       `json:"ledger_pieces"`
	Drift        int       `json:"drift"`
	Corrected    bool      `json:"corrected"`
}

// MovementService exposes the stock movement ledger and reconciles the
// product aggregate against it.
type MovementService struct {
	scope     TransactionScope
	movements inventory.StockMovementRepository
	products  catalog.ProductRepository
	logger    *zap.Logger
}

// NewMovementService creates a new movement service
func NewMovementService(
	scope TransactionScope,
	movements inventory.StockMovementRepository,
	products catalog.ProductRepository,
	logger *zap.Logger,
) *MovementService {
	return &MovementService{
		scope:     scope,
		movements: movements,
		products:  products,
		logger:    logger,
	}
}

// ListByProduct lists movements for a product, newest first
func (s *MovementService) ListByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	return s.movements.FindByProduct(ctx, productID, filter)
}

// List lists movements matching the filter, newest first
func (s *MovementService) List(ctx context.Context, filter shared.Filter) ([]inventory.StockMovement, error) {
	return s.movements.FindAll(ctx, filter)
}

// ReconcileProduct compares a product's aggregate stock counter with the
// sum of its movement deltas. With apply set, the aggregate is corrected
// to the ledger sum.
func (s *MovementService) ReconcileProduct(ctx context.Context, productID uuid.UUID, apply bool) (ReconciliationResult, error) {
	var result ReconciliationResult

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.Products.FindByID(ctx, productID)
		if err != nil {
			return fmt.Errorf("failed to load product %s: %w", productID, err)
		}

		ledger, err := repos.Movements.SumPiecesByProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("failed to sum movements: %w", err)
		}

		result = ReconciliationResult{
			ProductID:    product.ID,
			ProductName:  product.Name,
			StockPieces:  product.StockPieces,
			LedgerPieces: ledger,
			Drift:        product.StockPieces - ledger,
		}

		if result.Drift != 0 && apply {
			product.AdjustStock(-result.Drift, 0)
			product.StockBoxes = product.BoxesFor(product.StockPieces)
			if err := repos.Products.Save(ctx, product); err != nil {
				return fmt.Errorf("failed to save product %s: %w", product.ID, err)
			}
			result.Corrected = true
		}
		return nil
	})
	if err != nil {
		return ReconciliationResult{}, err
	}

	if result.Drift != 0 {
		s.logger.Warn("stock drift detected",
			zap.String("product_id", result.ProductID.String()),
			zap.Int("drift", result.Drift),
			zap.Bool("corrected", result.Corrected))
	}
	return result, nil
}
