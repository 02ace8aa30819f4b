package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
)

// DefaultShelfLifeDays is the shelf life applied when no expiry date is given
const DefaultShelfLifeDays = 365

// ExpiryWarningDays is the window within which a batch counts as expiring
const ExpiryWarningDays = 7

// BatchStatus is the derived lifecycle status of a production batch
type BatchStatus string

const (
	BatchStatusActive   BatchStatus = "ACTIVE"
	BatchStatusExpiring BatchStatus = "EXPIRING"
	BatchStatusExpired  BatchStatus = "EXPIRED"
	BatchStatusDepleted BatchStatus = "DEPLETED"
)

// ProductionBatch represents a dated lot of a product's production or arrival.
// (ProductID, BatchDate) acts as a natural key: posting stock for an existing
// pair accumulates into the batch instead of creating a duplicate.
// Invariant: AvailableQuantity >= 0, ReservedQuantity >= 0 and
// AvailableQuantity + ReservedQuantity <= TotalQuantity after every operation.
type ProductionBatch struct {
	shared.BaseEntity
	ProductID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_batch_product_date,priority:1"`
	BatchDate         time.Time `gorm:"type:date;not null;uniqueIndex:idx_batch_product_date,priority:2"`
	ExpiryDate        time.Time `gorm:"type:date;not null;index"`
	TotalQuantity     int       `gorm:"not null;default:0"`
	AvailableQuantity int       `gorm:"not null;default:0"`
	ReservedQuantity  int       `gorm:"not null;default:0"`
	Status            string    `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	Notes             string    `gorm:"type:text"`
	Version           int       `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (ProductionBatch) TableName() string {
	return "production_batches"
}

// NewProductionBatch creates a new batch with the full quantity available.
// A zero expiry date defaults to batch date plus the standard shelf life.
func NewProductionBatch(productID uuid.UUID, batchDate, expiryDate time.Time, quantity int) (*ProductionBatch, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity must be positive")
	}
	if expiryDate.IsZero() {
		expiryDate = batchDate.AddDate(0, 0, DefaultShelfLifeDays)
	}

	return &ProductionBatch{
		BaseEntity:        shared.NewBaseEntity(),
		ProductID:         productID,
		BatchDate:         batchDate,
		ExpiryDate:        expiryDate,
		TotalQuantity:     quantity,
		AvailableQuantity: quantity,
		Status:            string(BatchStatusActive),
		Version:           1,
	}, nil
}

// Receive accumulates newly produced or arrived stock into the batch.
// Receiving stock under an existing batch date revives a depleted or
// previously deactivated batch.
func (b *ProductionBatch) Receive(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}
	b.TotalQuantity += quantity
	b.AvailableQuantity += quantity
	b.Status = string(BatchStatusActive)
	b.Touch()
	return nil
}

// Reserve moves quantity from the available pool into the reserved pool.
// Insufficient availability is a hard error, never clamped.
func (b *ProductionBatch) Reserve(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Reserve quantity must be positive")
	}
	if b.AvailableQuantity < quantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock in batch %s: %d available, %d requested", b.ID, b.AvailableQuantity, quantity))
	}
	b.AvailableQuantity -= quantity
	b.ReservedQuantity += quantity
	b.Touch()
	return nil
}

// Release returns reserved quantity to the available pool, clamped to the
// current reservation. Returns the amount actually released.
func (b *ProductionBatch) Release(quantity int) int {
	if quantity <= 0 {
		return 0
	}
	released := quantity
	if released > b.ReservedQuantity {
		released = b.ReservedQuantity
	}
	b.ReservedQuantity -= released
	b.AvailableQuantity += released
	b.Touch()
	return released
}

// Consume permanently removes quantity from the batch (writeoff): both the
// available and total pools shrink together, reservations are untouched.
func (b *ProductionBatch) Consume(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Writeoff quantity must be positive")
	}
	if b.AvailableQuantity < quantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock in batch %s: %d available, %d requested", b.ID, b.AvailableQuantity, quantity))
	}
	b.AvailableQuantity -= quantity
	b.TotalQuantity -= quantity
	b.Touch()
	return nil
}

// ConsumeReserved removes shipped quantity from the batch: both the
// reserved and total pools shrink together, clamped to the current
// reservation. Returns the amount actually consumed.
func (b *ProductionBatch) ConsumeReserved(quantity int) int {
	if quantity <= 0 {
		return 0
	}
	consumed := quantity
	if consumed > b.ReservedQuantity {
		consumed = b.ReservedQuantity
	}
	b.ReservedQuantity -= consumed
	b.TotalQuantity -= consumed
	b.Touch()
	return consumed
}

// IsExpired returns true if the batch expired before the given day
func (b *ProductionBatch) IsExpired(today time.Time) bool {
	return b.ExpiryDate.Before(truncateToDay(today))
}

// DaysToExpiry returns the number of whole days until expiry (negative when expired)
func (b *ProductionBatch) DaysToExpiry(today time.Time) int {
	return int(b.ExpiryDate.Sub(truncateToDay(today)).Hours() / 24)
}

// BatchStatus derives the lifecycle status for the given day
func (b *ProductionBatch) BatchStatus(today time.Time) BatchStatus {
	switch {
	case b.IsExpired(today):
		return BatchStatusExpired
	case b.DaysToExpiry(today) <= ExpiryWarningDays:
		return BatchStatusExpiring
	case b.AvailableQuantity <= 0:
		return BatchStatusDepleted
	default:
		return BatchStatusActive
	}
}

// IsAllocatable returns true if the batch can back a new allocation:
// active, with available stock, and not expired.
func (b *ProductionBatch) IsAllocatable(today time.Time) bool {
	return b.Status == string(BatchStatusActive) && b.AvailableQuantity > 0 && !b.IsExpired(today)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
