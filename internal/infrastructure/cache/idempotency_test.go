package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIdempotencyStore_Ciclo(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore(time.Minute)

	saleID, reserved, err := store.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Empty(t, saleID)

	// En curso: ni reservada ni confirmada.
	saleID, reserved, err = store.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Empty(t, saleID)

	require.NoError(t, store.Complete(ctx, "k1", "sale-1"))
	saleID, reserved, err = store.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "sale-1", saleID)
}

func TestMemoryIdempotencyStore_ReleaseYExpiracion(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := NewMemoryIdempotencyStore(time.Minute)
	store.nowFunc = func() time.Time { return now }

	_, reserved, _ := store.Reserve(ctx, "k")
	require.True(t, reserved)
	require.NoError(t, store.Release(ctx, "k"))
	_, reserved, _ = store.Reserve(ctx, "k")
	assert.True(t, reserved, "liberada se puede volver a reservar")

	require.NoError(t, store.Complete(ctx, "k", "sale-9"))
	now = now.Add(2 * time.Minute)
	saleID, reserved, _ := store.Reserve(ctx, "k")
	assert.True(t, reserved, "expirada se trata como nueva")
	assert.Empty(t, saleID)
}

func TestNoopIdempotencyStore_SiempreReserva(t *testing.T) {
	var store NoopIdempotencyStore
	for range 2 {
		_, reserved, err := store.Reserve(context.Background(), "k")
		require.NoError(t, err)
		assert.True(t, reserved)
	}
}
