package inventory

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BatchAllocation is one tuple of an allocation plan: a quantity taken from a
// specific batch, or a shortage marker (nil BatchID, Shortage=true) recording
// the unbacked remainder of a request.
type BatchAllocation struct {
	BatchID    *uuid.UUID `json:"batch_id"`
	BatchDate  *time.Time `json:"batch_date,omitempty"`
	Quantity   int        `json:"quantity"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	Shortage   bool       `json:"shortage,omitempty"`
}

// IsShortage returns true for the shortage marker tuple
func (a BatchAllocation) IsShortage() bool {
	return a.BatchID == nil || a.Shortage
}

// UnmarshalJSON accepts both the current "quantity" field and the legacy
// "allocated_quantity" name used by older persisted order items.
func (a *BatchAllocation) UnmarshalJSON(data []byte) error {
	type alias BatchAllocation
	aux := struct {
		*alias
		AllocatedQuantity int `json:"allocated_quantity"`
	}{alias: (*alias)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if a.Quantity == 0 && aux.AllocatedQuantity > 0 {
		a.Quantity = aux.AllocatedQuantity
	}
	return nil
}

// Allocation is the full plan for one requested quantity: an ordered list of
// batch tuples plus at most one shortage marker.
type Allocation []BatchAllocation

// Reserved returns the total quantity backed by real batches
func (al Allocation) Reserved() int {
	total := 0
	for _, a := range al {
		if !a.IsShortage() {
			total += a.Quantity
		}
	}
	return total
}

// Shortage returns the unbacked remainder recorded in the plan
func (al Allocation) Shortage() int {
	total := 0
	for _, a := range al {
		if a.IsShortage() {
			total += a.Quantity
		}
	}
	return total
}

// ReleaseTuples converts the plan into releasable {batch_id, quantity} pairs,
// skipping shortage markers and zero quantities.
func (al Allocation) ReleaseTuples() []ReleaseRequest {
	tuples := make([]ReleaseRequest, 0, len(al))
	for _, a := range al {
		if a.IsShortage() || a.Quantity <= 0 {
			continue
		}
		tuples = append(tuples, ReleaseRequest{BatchID: *a.BatchID, Quantity: a.Quantity})
	}
	return tuples
}

// Value serializes the allocation to JSON for storage on the order line
func (al Allocation) Value() (driver.Value, error) {
	if al == nil {
		return nil, nil
	}
	data, err := json.Marshal(al)
	if err != nil {
		return nil, fmt.Errorf("marshal allocation: %w", err)
	}
	return string(data), nil
}

// Scan deserializes the allocation from its stored JSON representation
func (al *Allocation) Scan(value interface{}) error {
	if value == nil {
		*al = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported allocation column type %T", value)
	}
	if len(data) == 0 {
		*al = nil
		return nil
	}
	return json.Unmarshal(data, al)
}

// ReserveRequest is one {batch_id, quantity} tuple submitted for reservation
type ReserveRequest struct {
	BatchID  uuid.UUID `json:"batch_id"`
	Quantity int       `json:"quantity"`
}

// ReleaseRequest is one {batch_id, quantity} tuple submitted for release
type ReleaseRequest struct {
	BatchID  uuid.UUID `json:"batch_id"`
	Quantity int       `json:"quantity"`
}
