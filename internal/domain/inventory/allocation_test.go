package inventory

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocation_Totals(t *testing.T) {
	batchID := uuid.New()
	alloc := Allocation{
		{BatchID: &batchID, Quantity: 30},
		{BatchID: nil, Quantity: 20, Shortage: true},
	}

	assert.Equal(t, 30, alloc.Reserved())
	assert.Equal(t, 20, alloc.Shortage())
}

func TestAllocation_ReleaseTuplesSkipMarkers(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	alloc := Allocation{
		{BatchID: &a, Quantity: 10},
		{BatchID: nil, Quantity: 5, Shortage: true},
		{BatchID: &b, Quantity: 15},
	}

	tuples := alloc.ReleaseTuples()
	require.Len(t, tuples, 2)
	assert.Equal(t, a, tuples[0].BatchID)
	assert.Equal(t, 10, tuples[0].Quantity)
	assert.Equal(t, b, tuples[1].BatchID)
	assert.Equal(t, 15, tuples[1].Quantity)
}

func TestAllocation_ValueScanRoundTrip(t *testing.T) {
	batchID := uuid.New()
	alloc := Allocation{
		{BatchID: &batchID, Quantity: 42},
		{BatchID: nil, Quantity: 8, Shortage: true},
	}

	value, err := alloc.Value()
	require.NoError(t, err)

	var restored Allocation
	require.NoError(t, restored.Scan(value))

	require.Len(t, restored, 2)
	assert.Equal(t, batchID, *restored[0].BatchID)
	assert.Equal(t, 42, restored[0].Quantity)
	assert.True(t, restored[1].IsShortage())
	assert.Equal(t, 8, restored[1].Quantity)
}

func TestAllocation_ScanNil(t *testing.T) {
	var alloc Allocation
	require.NoError(t, alloc.Scan(nil))
	assert.Nil(t, alloc)
}

func TestBatchAllocation_LegacyQuantityField(t *testing.T) {
	// older stored rows used "allocated_quantity"
	raw := `[{"batch_id":"` + uuid.New().String() + `","allocated_quantity":25}]`

	var alloc Allocation
	require.NoError(t, json.Unmarshal([]byte(raw), &alloc))

	require.Len(t, alloc, 1)
	assert.Equal(t, 25, alloc[0].Quantity)
	assert.False(t, alloc[0].IsShortage())
}

func TestBatchAllocation_MarkerJSONShape(t *testing.T) {
	marker := BatchAllocation{BatchID: nil, Quantity: 7, Shortage: true}

	data, err := json.Marshal(marker)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Nil(t, decoded["batch_id"])
	assert.Equal(t, float64(7), decoded["quantity"])
	assert.Equal(t, true, decoded["shortage"])
}
