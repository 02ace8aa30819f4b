package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/inventory"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
)

// GormWriteoffRepository implements WriteoffRepository using GORM
type GormWriteoffRepository struct {
	db *gorm.DB
}

// NewGormWriteoffRepository creates a new GormWriteoffRepository
func NewGormWriteoffRepository(db *gorm.DB) *GormWriteoffRepository {
	return &GormWriteoffRepository{db: db}
}

var _ inventory.WriteoffRepository = (*GormWriteoffRepository)(nil)

// Save stores a new writeoff record
func (r *GormWriteoffRepository) Save(ctx context.Context, writeoff *inventory.Writeoff) error {
	return r.db.WithContext(ctx).Save(writeoff).Error
}

// FindAll lists writeoffs matching the filter, newest first
func (r *GormWriteoffRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Writeoff, error) {
	var writeoffs []inventory.Writeoff
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Writeoff{}),
		filter, "writeoff_date DESC, created_at DESC",
	)

	if err := query.Find(&writeoffs).Error; err != nil {
		return nil, err
	}
	return writeoffs, nil
}

// FindByProduct lists writeoffs for a product, newest first
func (r *GormWriteoffRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.Writeoff, error) {
	var writeoffs []inventory.Writeoff
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Writeoff{}).
			Where("product_id = ?", productID),
		filter, "writeoff_date DESC, created_at DESC",
	)

	if err := query.Find(&writeoffs).Error; err != nil {
		return nil, err
	}
	return writeoffs, nil
}
