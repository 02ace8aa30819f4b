package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
)

// Writeoff records permanent removal of quantity from a batch and from total
// product stock (spoilage, damage, quality issues).
type Writeoff struct {
	shared.BaseEntity
	ProductID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	BatchID        *uuid.UUID `gorm:"type:uuid;index"`
	BatchDate      *time.Time `gorm:"type:date"`
	WriteoffDate   time.Time  `gorm:"type:date;not null"`
	TotalQuantity  int        `gorm:"not null"`
	BoxesQuantity  int        `gorm:"not null"`
	PiecesQuantity int        `gorm:"not null"`
	Reason         string     `gorm:"type:varchar(255);not null"`
	Responsible    string     `gorm:"type:varchar(100);not null"`
	Notes          string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Writeoff) TableName() string {
	return "writeoffs"
}

// NewWriteoff creates a writeoff record, decomposing the quantity into full
// boxes and loose pieces via the product's pieces-per-box.
func NewWriteoff(productID uuid.UUID, quantity, piecesPerBox int, reason, responsible, notes string) (*Writeoff, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Writeoff quantity must be positive")
	}
	if reason == "" || responsible == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Reason and responsible are required")
	}
	if piecesPerBox <= 0 {
		piecesPerBox = 1
	}

	return &Writeoff{
		BaseEntity:     shared.NewBaseEntity(),
		ProductID:      productID,
		WriteoffDate:   time.Now(),
		TotalQuantity:  quantity,
		BoxesQuantity:  quantity / piecesPerBox,
		PiecesQuantity: quantity % piecesPerBox,
		Reason:         reason,
		Responsible:    responsible,
		Notes:          notes,
	}, nil
}

// WithBatch links the writeoff to the batch it was taken from
func (w *Writeoff) WithBatch(batchID uuid.UUID, batchDate time.Time) *Writeoff {
	w.BatchID = &batchID
	w.BatchDate = &batchDate
	return w
}
