package inventory

import (
	"sort"
	"time"

	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/shared"
)

// AllocationResult is the outcome of a FIFO allocation pass over a ledger
// snapshot. AllocatedBatches carries the plan, including the shortage marker
// when supply ran out; Shortage duplicates the unbacked remainder for callers
// that only want the number.
type AllocationResult struct {
	ProductName       string     `json:"product_name,omitempty"`
	QuantityRequested int        `json:"quantity_requested"`
	QuantityReserved  int        `json:"quantity_reserved"`
	Shortage          int        `json:"shortage"`
	AllocatedBatches  Allocation `json:"allocated_batches"`
}

// HasShortage returns true when the request could not be fully covered
func (r AllocationResult) HasShortage() bool {
	return r.Shortage > 0
}

// FIFOAllocator selects batches oldest-first to cover a requested quantity.
// It only reads the snapshot it is given; applying the resulting plan against
// the ledger is the reservation engine's job, which re-validates availability
// at write time because this snapshot may be stale by then.
type FIFOAllocator struct{}

// NewFIFOAllocator creates a new FIFOAllocator
func NewFIFOAllocator() *FIFOAllocator {
	return &FIFOAllocator{}
}

// Allocate walks the eligible batches in (BatchDate, CreatedAt) order, taking
// min(remaining, available) from each until the request is covered or supply
// is exhausted. The leftover is reported as shortage and appended to the plan
// as a marker tuple so the unbacked portion stays visible in persisted data.
func (f *FIFOAllocator) Allocate(batches []ProductionBatch, quantityNeeded int, today time.Time) (AllocationResult, error) {
	if quantityNeeded <= 0 {
		return AllocationResult{}, shared.NewDomainError("VALIDATION_ERROR", "Requested quantity must be positive")
	}

	eligible := make([]ProductionBatch, 0, len(batches))
	for _, b := range batches {
		if b.IsAllocatable(today) {
			eligible = append(eligible, b)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if !eligible[i].BatchDate.Equal(eligible[j].BatchDate) {
			return eligible[i].BatchDate.Before(eligible[j].BatchDate)
		}
		return eligible[i].CreatedAt.Before(eligible[j].CreatedAt)
	})

	result := AllocationResult{
		QuantityRequested: quantityNeeded,
		AllocatedBatches:  make(Allocation, 0, len(eligible)),
	}

	remaining := quantityNeeded
	for i := range eligible {
		if remaining <= 0 {
			break
		}
		b := eligible[i]
		take := remaining
		if take > b.AvailableQuantity {
			take = b.AvailableQuantity
		}
		batchID := b.ID
		batchDate := b.BatchDate
		expiry := b.ExpiryDate
		result.AllocatedBatches = append(result.AllocatedBatches, BatchAllocation{
			BatchID:    &batchID,
			BatchDate:  &batchDate,
			Quantity:   take,
			ExpiryDate: &expiry,
		})
		remaining -= take
	}

	result.QuantityReserved = quantityNeeded - remaining
	result.Shortage = remaining
	if remaining > 0 {
		result.AllocatedBatches = append(result.AllocatedBatches, BatchAllocation{
			BatchID:  nil,
			Quantity: remaining,
			Shortage: true,
		})
	}

	return result, nil
}
