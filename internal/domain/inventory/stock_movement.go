package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
)

// MovementType represents the type of stock movement
type MovementType string

const (
	MovementTypeIn         MovementType = "IN"
	MovementTypeOut        MovementType = "OUT"
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
	MovementTypeWriteoff   MovementType = "WRITEOFF"
	MovementTypeProduction MovementType = "PRODUCTION"
	MovementTypeArrival    MovementType = "ARRIVAL"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment,
		MovementTypeWriteoff, MovementTypeProduction, MovementTypeArrival:
		return true
	}
	return false
}

// StockMovement is an immutable record of a stock delta. Movements are never
// updated or deleted; corrections are made with new movements. The sum of all
// movement deltas for a product is the reconciliation source for the
// product's aggregate stock counters.
type StockMovement struct {
	shared.BaseEntity
	ProductID    uuid.UUID    `gorm:"type:uuid;not null;index:idx_movement_product_time,priority:1"`
	MovementType MovementType `gorm:"type:varchar(20);not null;index"`
	Pieces       int          `gorm:"not null"` // signed delta
	Boxes        int          `gorm:"not null"` // signed delta
	BatchID      *uuid.UUID   `gorm:"type:uuid;index"`
	BatchDate    *time.Time   `gorm:"type:date"`
	Reason       string       `gorm:"type:varchar(255)"`
	User         string       `gorm:"type:varchar(100);not null;default:'system'"`
	MovementDate time.Time    `gorm:"not null;index:idx_movement_product_time,priority:2"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new movement record with a signed pieces/boxes delta
func NewStockMovement(productID uuid.UUID, movementType MovementType, pieces, boxes int, reason, user string) (*StockMovement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if user == "" {
		user = "system"
	}

	return &StockMovement{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		MovementType: movementType,
		Pieces:       pieces,
		Boxes:        boxes,
		Reason:       reason,
		User:         user,
		MovementDate: time.Now(),
	}, nil
}

// WithBatch links the movement to a specific batch
func (m *StockMovement) WithBatch(batchID uuid.UUID, batchDate time.Time) *StockMovement {
	m.BatchID = &batchID
	m.BatchDate = &batchDate
	return m
}
