package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/inventory"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
)

// GormStockMovementRepository implements StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)

// Append stores a new movement record
func (r *GormStockMovementRepository) Append(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindByProduct lists movements for a product, newest first
func (r *GormStockMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
			Where("product_id = ?", productID),
		filter, "movement_date DESC, created_at DESC",
	)
	query = applyMovementFilters(query, filter)

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindAll lists movements matching the filter, newest first
func (r *GormStockMovementRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockMovement{}),
		filter, "movement_date DESC, created_at DESC",
	)
	query = applyMovementFilters(query, filter)

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// SumPiecesByProduct sums the signed pieces deltas for a product
func (r *GormStockMovementRepository) SumPiecesByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	var sum *int
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Where("product_id = ?", productID).
		Select("SUM(pieces)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

func applyMovementFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "movement_type":
			query = query.Where("movement_type = ?", value)
		case "batch_id":
			query = query.Where("batch_id = ?", value)
		case "since":
			query = query.Where("movement_date >= ?", value)
		case "until":
			query = query.Where("movement_date <= ?", value)
		}
	}
	return query
}
