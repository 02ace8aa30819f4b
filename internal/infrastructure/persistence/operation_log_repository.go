package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/audit"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
)

// GormOperationLogRepository implements OperationLogRepository using GORM
type GormOperationLogRepository struct {
	db *gorm.DB
}

// NewGormOperationLogRepository creates a new GormOperationLogRepository
func NewGormOperationLogRepository(db *gorm.DB) *GormOperationLogRepository {
	return &GormOperationLogRepository{db: db}
}

var _ audit.OperationLogRepository = (*GormOperationLogRepository)(nil)

// Append stores a new log entry
func (r *GormOperationLogRepository) Append(ctx context.Context, entry *audit.OperationLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindAll finds log entries matching the filter, newest first
func (r *GormOperationLogRepository) FindAll(ctx context.Context, filter shared.Filter) ([]audit.OperationLog, error) {
	var entries []audit.OperationLog
	query := applyFilter(
		r.db.WithContext(ctx).Model(&audit.OperationLog{}),
		filter, "operation_date DESC",
	)

	for key, value := range filter.Filters {
		switch key {
		case "operation_type":
			query = query.Where("operation_type = ?", value)
		case "entity_id":
			query = query.Where("entity_id = ?", value)
		}
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
