package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
)

// ProductionBatchRepository defines the interface for batch ledger persistence
type ProductionBatchRepository interface {
	// FindByID finds a batch by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProductionBatch, error)

	// FindByProductAndDate finds the batch identified by the natural key
	FindByProductAndDate(ctx context.Context, productID uuid.UUID, batchDate time.Time) (*ProductionBatch, error)

	// FindByProduct finds all batches for a product in FIFO order,
	// optionally including expired and depleted ones
	FindByProduct(ctx context.Context, productID uuid.UUID, includeExpired bool) ([]ProductionBatch, error)

	// FindAllocatable finds active, unexpired batches with available stock
	// for a product, ordered oldest-first (batch_date, created_at)
	FindAllocatable(ctx context.Context, productID uuid.UUID, today time.Time) ([]ProductionBatch, error)

	// FindExpiring finds active batches with stock expiring within the window
	FindExpiring(ctx context.Context, within time.Duration) ([]ProductionBatch, error)

	// FindProductIDsWithBatches lists product IDs that have at least one batch
	FindProductIDsWithBatches(ctx context.Context) ([]uuid.UUID, error)

	// Save creates or updates a batch
	Save(ctx context.Context, batch *ProductionBatch) error

	// SaveWithLock updates a batch with optimistic locking (checks version).
	// Quantity-changing paths use it so concurrent transactions cannot
	// overwrite each other's counters.
	SaveWithLock(ctx context.Context, batch *ProductionBatch) error
}

// StockMovementRepository is the append-only ledger of stock deltas
type StockMovementRepository interface {
	// Append stores a new movement record
	Append(ctx context.Context, movement *StockMovement) error

	// FindByProduct lists movements for a product, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindAll lists movements matching the filter, newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]StockMovement, error)

	// SumPiecesByProduct sums the signed pieces deltas for a product,
	// the reconciliation source for the product aggregate
	SumPiecesByProduct(ctx context.Context, productID uuid.UUID) (int, error)
}

// WriteoffRepository defines the interface for writeoff record persistence
type WriteoffRepository interface {
	// Save stores a new writeoff record
	Save(ctx context.Context, writeoff *Writeoff) error

	// FindAll lists writeoffs matching the filter, newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]Writeoff, error)

	// FindByProduct lists writeoffs for a product, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]Writeoff, error)
}
