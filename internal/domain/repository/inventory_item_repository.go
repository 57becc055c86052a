package repository

import (
	"context"

	"github.com/jhoicas/dukastock-api/internal/domain/entity"
)

// ItemFilter filtros para listar inventario. StoreID vacío o entity.StoreIDAll = todas las dukas del negocio.
// Limit <= 0 = sin límite.
type ItemFilter struct {
	BusinessID string
	StoreID    string
	Search     string // coincidencia parcial en @No, nombre o marca
	Limit      int
	Offset     int
}

// InventoryItemRepository define el puerto de persistencia para las líneas de inventario.
// GetByID y las variantes ForUpdate devuelven (nil, nil) si el documento no existe.
// Las variantes ForUpdate bloquean el documento hasta el fin de la transacción en curso.
type InventoryItemRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error)
	GetByStoreAndAtNoForUpdate(ctx context.Context, storeID, atNo string) (*entity.InventoryItem, error)
	Update(ctx context.Context, item *entity.InventoryItem) error
	List(ctx context.Context, filter ItemFilter) ([]*entity.InventoryItem, error)
	Delete(ctx context.Context, id string) error
}
