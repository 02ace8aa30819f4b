package catalog

import (
	"strings"

	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
)

// StockStatus classifies a product's stock level against its minimum threshold
type StockStatus string

const (
	StockStatusLow     StockStatus = "low"
	StockStatusWarning StockStatus = "warning"
	StockStatusGood    StockStatus = "good"
)

// Product represents a pizza product in the catalog.
// It is the aggregate root for catalog operations; its stock counters are an
// aggregate view over the batch ledger and are only mutated inside the same
// transaction as the batch and movement rows they derive from.
type Product struct {
	shared.BaseEntity
	Name           string `gorm:"type:varchar(200);not null"`
	Code           string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Barcode        string `gorm:"type:varchar(50);index"`
	PiecesPerBox   int    `gorm:"not null;default:1"`
	StockPieces    int    `gorm:"not null;default:0"`
	StockBoxes     int    `gorm:"not null;default:0"`
	MinStockPieces int    `gorm:"not null;default:0"`
	Description    string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(name, code string, piecesPerBox int) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if piecesPerBox <= 0 {
		return nil, shared.NewDomainError("INVALID_PIECES_PER_BOX", "Pieces per box must be positive")
	}

	return &Product{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         name,
		Code:         strings.ToUpper(code),
		PiecesPerBox: piecesPerBox,
	}, nil
}

// BoxesFor decomposes a piece quantity into full boxes
func (p *Product) BoxesFor(pieces int) int {
	if p.PiecesPerBox <= 0 {
		return 0
	}
	return pieces / p.PiecesPerBox
}

// PiecesRemainder returns the loose pieces left after packing full boxes
func (p *Product) PiecesRemainder(pieces int) int {
	if p.PiecesPerBox <= 0 {
		return pieces
	}
	return pieces % p.PiecesPerBox
}

// AdjustStock applies a signed delta to the aggregate stock counters.
// Must be called in the same transaction as the movement record it mirrors.
func (p *Product) AdjustStock(deltaPieces, deltaBoxes int) {
	p.StockPieces += deltaPieces
	p.StockBoxes += deltaBoxes
	p.Touch()
}

// SetMinStock sets the reorder threshold
func (p *Product) SetMinStock(pieces int) error {
	if pieces < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Minimum stock cannot be negative")
	}
	p.MinStockPieces = pieces
	p.Touch()
	return nil
}

// StockStatusFor classifies an available quantity against the minimum threshold:
// "low" below the threshold, "warning" below twice the threshold, "good" otherwise.
func (p *Product) StockStatusFor(available int) StockStatus {
	switch {
	case available < p.MinStockPieces:
		return StockStatusLow
	case available < p.MinStockPieces*2:
		return StockStatusWarning
	default:
		return StockStatusGood
	}
}
