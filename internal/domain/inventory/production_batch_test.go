package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewProductionBatch(t *testing.T) {
	productID := uuid.New()
	batchDate := date(2026, 3, 1)

	t.Run("full quantity starts available", func(t *testing.T) {
		batch, err := NewProductionBatch(productID, batchDate, date(2026, 6, 1), 100)
		require.NoError(t, err)

		assert.Equal(t, 100, batch.TotalQuantity)
		assert.Equal(t, 100, batch.AvailableQuantity)
		assert.Equal(t, 0, batch.ReservedQuantity)
		assert.Equal(t, string(BatchStatusActive), batch.Status)
	})

	t.Run("zero expiry defaults to shelf life", func(t *testing.T) {
		batch, err := NewProductionBatch(productID, batchDate, time.Time{}, 10)
		require.NoError(t, err)

		assert.Equal(t, batchDate.AddDate(0, 0, DefaultShelfLifeDays), batch.ExpiryDate)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewProductionBatch(productID, batchDate, time.Time{}, 0)
		assert.Error(t, err)

		_, err = NewProductionBatch(productID, batchDate, time.Time{}, -5)
		assert.Error(t, err)
	})

	t.Run("rejects empty product", func(t *testing.T) {
		_, err := NewProductionBatch(uuid.Nil, batchDate, time.Time{}, 10)
		assert.Error(t, err)
	})
}

func TestProductionBatch_Receive(t *testing.T) {
	batch, err := NewProductionBatch(uuid.New(), date(2026, 3, 1), time.Time{}, 50)
	require.NoError(t, err)

	require.NoError(t, batch.Receive(30))
	assert.Equal(t, 80, batch.TotalQuantity)
	assert.Equal(t, 80, batch.AvailableQuantity)

	t.Run("revives depleted batch", func(t *testing.T) {
		batch.Status = string(BatchStatusDepleted)
		require.NoError(t, batch.Receive(5))
		assert.Equal(t, string(BatchStatusActive), batch.Status)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		assert.Error(t, batch.Receive(0))
	})
}

func TestProductionBatch_ReserveAndRelease(t *testing.T) {
	batch, err := NewProductionBatch(uuid.New(), date(2026, 3, 1), time.Time{}, 100)
	require.NoError(t, err)

	require.NoError(t, batch.Reserve(60))
	assert.Equal(t, 40, batch.AvailableQuantity)
	assert.Equal(t, 60, batch.ReservedQuantity)
	assert.Equal(t, 100, batch.TotalQuantity)

	t.Run("reserve beyond availability fails hard", func(t *testing.T) {
		err := batch.Reserve(41)
		require.Error(t, err)
		// nothing changed
		assert.Equal(t, 40, batch.AvailableQuantity)
		assert.Equal(t, 60, batch.ReservedQuantity)
	})

	t.Run("release clamps to reserved", func(t *testing.T) {
		released := batch.Release(100)
		assert.Equal(t, 60, released)
		assert.Equal(t, 100, batch.AvailableQuantity)
		assert.Equal(t, 0, batch.ReservedQuantity)
	})

	t.Run("release on empty reservation is a no-op", func(t *testing.T) {
		released := batch.Release(10)
		assert.Equal(t, 0, released)
		assert.Equal(t, 100, batch.AvailableQuantity)
	})
}

func TestProductionBatch_Consume(t *testing.T) {
	batch, err := NewProductionBatch(uuid.New(), date(2026, 3, 1), time.Time{}, 100)
	require.NoError(t, err)
	require.NoError(t, batch.Reserve(30))

	require.NoError(t, batch.Consume(50))

	// total shrinks with available; reservations untouched
	assert.Equal(t, 50, batch.TotalQuantity)
	assert.Equal(t, 20, batch.AvailableQuantity)
	assert.Equal(t, 30, batch.ReservedQuantity)

	t.Run("cannot consume more than available", func(t *testing.T) {
		assert.Error(t, batch.Consume(21))
		assert.Equal(t, 50, batch.TotalQuantity)
	})
}

func TestProductionBatch_Status(t *testing.T) {
	today := date(2026, 3, 10)

	tests := []struct {
		name      string
		expiry    time.Time
		available int
		want      BatchStatus
	}{
		{"expired yesterday", date(2026, 3, 9), 10, BatchStatusExpired},
		{"expiring today", date(2026, 3, 10), 10, BatchStatusExpiring},
		{"expiring within window", date(2026, 3, 17), 10, BatchStatusExpiring},
		{"depleted", date(2026, 6, 1), 0, BatchStatusDepleted},
		{"active", date(2026, 6, 1), 10, BatchStatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := NewProductionBatch(uuid.New(), date(2026, 3, 1), tt.expiry, 10)
			require.NoError(t, err)
			batch.AvailableQuantity = tt.available

			assert.Equal(t, tt.want, batch.BatchStatus(today))
		})
	}
}

func TestProductionBatch_IsAllocatable(t *testing.T) {
	today := date(2026, 3, 10)

	batch, err := NewProductionBatch(uuid.New(), date(2026, 3, 1), date(2026, 3, 10), 10)
	require.NoError(t, err)

	// expiring today still counts
	assert.True(t, batch.IsAllocatable(today))

	batch.ExpiryDate = date(2026, 3, 9)
	assert.False(t, batch.IsAllocatable(today))

	batch.ExpiryDate = date(2026, 6, 1)
	batch.AvailableQuantity = 0
	assert.False(t, batch.IsAllocatable(today))
}
