package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/catalog"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/inventory"
)

// ProductionCommand posts produced quantity into the batch ledger
type ProductionCommand struct {
	ProductID  uuid.UUID  `json:"product_id" binding:"required"`
	Quantity   int        `json:"quantity" binding:"required,gt=0"`
	BatchDate  time.Time  `json:"batch_date" binding:"required"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	User       string     `json:"user,omitempty"`
}

// ArrivalCommand posts externally received quantity into the batch ledger
type ArrivalCommand struct {
	ProductID  uuid.UUID  `json:"product_id" binding:"required"`
	Quantity   int        `json:"quantity" binding:"required,gt=0"`
	BatchDate  time.Time  `json:"batch_date" binding:"required"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	User       string     `json:"user,omitempty"`
}

// ArrivalItemCommand is one product line of an arrival document
type ArrivalItemCommand struct {
	ProductID  uuid.UUID  `json:"product_id" binding:"required"`
	Quantity   int        `json:"quantity" binding:"required,gt=0"`
	BatchDate  *time.Time `json:"batch_date,omitempty"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// ArrivalDocumentCommand posts several arrival lines under one document.
// Lines without a batch date inherit the document's arrival date.
type ArrivalDocumentCommand struct {
	DocumentNumber string               `json:"document_number,omitempty"`
	ArrivalDate    time.Time            `json:"arrival_date" binding:"required"`
	Reason         string               `json:"reason,omitempty"`
	Items          []ArrivalItemCommand `json:"items" binding:"required,min=1,dive"`
	User           string               `json:"user,omitempty"`
}

// ArrivalItemResult is the per-line outcome of an arrival document
type ArrivalItemResult struct {
	ProductID uuid.UUID  `json:"product_id"`
	Quantity  int        `json:"quantity"`
	Batch     *BatchView `json:"batch,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// ArrivalDocumentView summarizes a posted arrival document
type ArrivalDocumentView struct {
	DocumentNumber string              `json:"document_number,omitempty"`
	Processed      int                 `json:"processed"`
	Failed         int                 `json:"failed"`
	Items          []ArrivalItemResult `json:"items"`
}

// ReserveCommand reserves quantity of a product against its oldest batches
type ReserveCommand struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
	User      string    `json:"user,omitempty"`
}

// ReleaseCommand returns previously reserved quantities back to their batches
type ReleaseCommand struct {
	Releases []inventory.ReleaseRequest `json:"releases" binding:"required,min=1,dive"`
	User     string                     `json:"user,omitempty"`
}

// WriteoffCommand removes quantity from a specific batch permanently
type WriteoffCommand struct {
	BatchID     uuid.UUID `json:"batch_id" binding:"required"`
	Quantity    int       `json:"quantity" binding:"required,gt=0"`
	Reason      string    `json:"reason" binding:"required"`
	Responsible string    `json:"responsible" binding:"required"`
	Notes       string    `json:"notes,omitempty"`
	User        string    `json:"user,omitempty"`
}

// ItemReservation is one product line of a multi-line reservation
type ItemReservation struct {
	ItemID    uuid.UUID `json:"item_id,omitempty"`
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// ItemReservationResult carries the outcome of one line of a multi-line
// reservation. Failed lines report an error message instead of batches.
type ItemReservationResult struct {
	ItemID      uuid.UUID            `json:"item_id,omitempty"`
	ProductID   uuid.UUID            `json:"product_id"`
	ProductName string               `json:"product_name,omitempty"`
	Quantity    int                  `json:"quantity"`
	Reserved    int                  `json:"reserved"`
	Batches     inventory.Allocation `json:"allocated_batches,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// WriteoffView describes a completed batch write-off
type WriteoffView struct {
	WriteoffID     uuid.UUID `json:"writeoff_id"`
	BatchID        uuid.UUID `json:"batch_id"`
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	Quantity       int       `json:"quantity"`
	Boxes          int       `json:"boxes"`
	Pieces         int       `json:"pieces"`
	BatchRemaining int       `json:"batch_remaining"`
}

// BatchView is the read model of one production batch
type BatchView struct {
	ID                uuid.UUID `json:"id"`
	ProductID         uuid.UUID `json:"product_id"`
	BatchDate         time.Time `json:"batch_date"`
	ExpiryDate        time.Time `json:"expiry_date"`
	TotalQuantity     int       `json:"total_quantity"`
	AvailableQuantity int       `json:"available_quantity"`
	ReservedQuantity  int       `json:"reserved_quantity"`
	Status            string    `json:"status"`
	Notes             string    `json:"notes,omitempty"`
}

// ExpiringBatchView is a batch close to its expiry date
type ExpiringBatchView struct {
	BatchView
	ProductName  string `json:"product_name"`
	DaysToExpiry int    `json:"days_to_expiry"`
	Urgency      string `json:"urgency"`
}

// AvailabilityView projects the sellable stock of one product. Expired
// stock is counted separately and never adds to the sellable total.
type AvailabilityView struct {
	ProductID        uuid.UUID           `json:"product_id"`
	ProductName      string              `json:"product_name"`
	TotalAvailable   int                 `json:"total_available"`
	TotalReserved    int                 `json:"total_reserved"`
	ActiveBatches    int                 `json:"active_batches"`
	ExpiringQuantity int                 `json:"expiring_quantity"`
	ExpiredQuantity  int                 `json:"expired_quantity"`
	MinStockPieces   int                 `json:"min_stock_pieces"`
	StockStatus      catalog.StockStatus `json:"stock_status"`
	Batches          []BatchView         `json:"batches"`
}

// GroupedBatchesView groups the batches of one product with totals
type GroupedBatchesView struct {
	ProductID        uuid.UUID           `json:"product_id"`
	ProductName      string              `json:"product_name"`
	ProductCode      string              `json:"product_code"`
	TotalAvailable   int                 `json:"total_available"`
	TotalReserved    int                 `json:"total_reserved"`
	ExpiringQuantity int                 `json:"expiring_quantity"`
	OldestBatchDate  *time.Time          `json:"oldest_batch_date,omitempty"`
	NewestBatchDate  *time.Time          `json:"newest_batch_date,omitempty"`
	StockStatus      catalog.StockStatus `json:"stock_status"`
	Batches          []BatchView         `json:"batches"`
}

func toBatchView(b *inventory.ProductionBatch, today time.Time) BatchView {
	return BatchView{
		ID:                b.ID,
		ProductID:         b.ProductID,
		BatchDate:         b.BatchDate,
		ExpiryDate:        b.ExpiryDate,
		TotalQuantity:     b.TotalQuantity,
		AvailableQuantity: b.AvailableQuantity,
		ReservedQuantity:  b.ReservedQuantity,
		Status:            string(b.BatchStatus(today)),
		Notes:             b.Notes,
	}
}
