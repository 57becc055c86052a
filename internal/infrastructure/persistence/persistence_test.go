package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
	"github.com/jhoicas/dukastock-api/pkg/config"
)

func TestOpen_Memoria(t *testing.T) {
	ctx := context.Background()
	be, err := Open(ctx, &config.Config{Store: config.StoreConfig{Driver: config.DriverMemory}}, nil)
	require.NoError(t, err)
	defer be.Close()

	require.NoError(t, be.Businesses.Create(ctx, &entity.Business{ID: "b1", Name: "Duka"}))
	got, err := be.Businesses.GetByID(ctx, "b1")
	require.NoError(t, err)
	require.NotNil(t, got)

	// Las transacciones ven el mismo almacén que los repositorios.
	err = be.Tx.Run(ctx, func(items repository.InventoryItemRepository) error {
		return items.Create(ctx, &entity.InventoryItem{ID: "i1", BusinessID: "b1", StoreID: "s1", AtNo: "A1"})
	})
	require.NoError(t, err)
	item, err := be.Items.GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.NotNil(t, item)
}
