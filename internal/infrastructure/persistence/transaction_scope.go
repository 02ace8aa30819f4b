package persistence

import (
	"context"

	"gorm.io/gorm"

	appinv "github.com/usv008/pizza-inventory-system-sub002/internal/application/inventory"
)

// GormTransactionScope implements TransactionScope using GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

var _ appinv.TransactionScope = (*GormTransactionScope)(nil)

// Execute runs the given function within a database transaction. All
// repositories handed to the function share the transaction's session,
// so an error rolls every change back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(appinv.TransactionalRepositories{
			Batches:   NewGormProductionBatchRepository(tx),
			Products:  NewGormProductRepository(tx),
			Movements: NewGormStockMovementRepository(tx),
			Writeoffs: NewGormWriteoffRepository(tx),
			Orders:    NewGormOrderRepository(tx),
			Audit:     NewGormOperationLogRepository(tx),
		})
	})
}
