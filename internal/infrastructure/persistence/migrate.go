package persistence

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/audit"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/catalog"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/inventory"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/trade"
)

// Migrate creates or updates the schema for every domain entity
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&catalog.Product{},
		&inventory.ProductionBatch{},
		&inventory.StockMovement{},
		&inventory.Writeoff{},
		&trade.Order{},
		&trade.OrderItem{},
		&audit.OperationLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
