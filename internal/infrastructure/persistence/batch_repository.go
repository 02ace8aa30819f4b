package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/inventory"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
)

// GormProductionBatchRepository implements ProductionBatchRepository using GORM
type GormProductionBatchRepository struct {
	db *gorm.DB
}

// NewGormProductionBatchRepository creates a new GormProductionBatchRepository
func NewGormProductionBatchRepository(db *gorm.DB) *GormProductionBatchRepository {
	return &GormProductionBatchRepository{db: db}
}

var _ inventory.ProductionBatchRepository = (*GormProductionBatchRepository)(nil)

// FindByID finds a batch by its ID
func (r *GormProductionBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.ProductionBatch, error) {
	var batch inventory.ProductionBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByProductAndDate finds the batch identified by the natural key
func (r *GormProductionBatchRepository) FindByProductAndDate(ctx context.Context, productID uuid.UUID, batchDate time.Time) (*inventory.ProductionBatch, error) {
	var batch inventory.ProductionBatch
	day := batchDate.Format("2006-01-02")
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND DATE(batch_date) = ?", productID, day).
		First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByProduct finds all batches for a product in FIFO order
func (r *GormProductionBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID, includeExpired bool) ([]inventory.ProductionBatch, error) {
	query := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("batch_date ASC, created_at ASC")

	if !includeExpired {
		query = query.
			Where("expiry_date >= ?", time.Now().Format("2006-01-02")).
			Where("available_quantity > 0 OR reserved_quantity > 0")
	}

	var batches []inventory.ProductionBatch
	if err := query.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindAllocatable finds active, unexpired batches with available stock
// for a product, oldest first. The ordering drives FIFO allocation.
func (r *GormProductionBatchRepository) FindAllocatable(ctx context.Context, productID uuid.UUID, today time.Time) ([]inventory.ProductionBatch, error) {
	var batches []inventory.ProductionBatch
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Where("available_quantity > 0").
		Where("status = ?", string(inventory.BatchStatusActive)).
		Where("expiry_date >= ?", today.Format("2006-01-02")).
		Order("batch_date ASC, created_at ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindExpiring finds batches with remaining stock expiring within the window
func (r *GormProductionBatchRepository) FindExpiring(ctx context.Context, within time.Duration) ([]inventory.ProductionBatch, error) {
	now := time.Now()
	threshold := now.Add(within)

	var batches []inventory.ProductionBatch
	if err := r.db.WithContext(ctx).
		Where("available_quantity > 0 OR reserved_quantity > 0").
		Where("expiry_date >= ? AND expiry_date <= ?",
			now.Format("2006-01-02"), threshold.Format("2006-01-02")).
		Order("expiry_date ASC, batch_date ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindProductIDsWithBatches lists product IDs that have at least one batch
func (r *GormProductionBatchRepository) FindProductIDsWithBatches(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&inventory.ProductionBatch{}).
		Distinct("product_id").
		Order("product_id").
		Pluck("product_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Save creates or updates a batch
func (r *GormProductionBatchRepository) Save(ctx context.Context, batch *inventory.ProductionBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// SaveWithLock updates a batch with optimistic locking. The UPDATE only
// matches the version the caller read; zero affected rows means another
// transaction committed first and the caller must retry with fresh state.
func (r *GormProductionBatchRepository) SaveWithLock(ctx context.Context, batch *inventory.ProductionBatch) error {
	currentVersion := batch.Version
	result := r.db.WithContext(ctx).
		Model(&inventory.ProductionBatch{}).
		Where("id = ? AND version = ?", batch.ID, currentVersion).
		Updates(map[string]interface{}{
			"total_quantity":     batch.TotalQuantity,
			"available_quantity": batch.AvailableQuantity,
			"reserved_quantity":  batch.ReservedQuantity,
			"status":             batch.Status,
			"expiry_date":        batch.ExpiryDate,
			"notes":              batch.Notes,
			"version":            currentVersion + 1,
			"updated_at":         batch.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR",
			fmt.Sprintf("Batch %s has been modified by another transaction", batch.ID))
	}
	batch.Version = currentVersion + 1
	return nil
}
