package repository

import (
	"context"
	"time"

	"github.com/jhoicas/dukastock-api/internal/domain/entity"
)

// SaleFilter filtros para listar ventas. From/To nil = sin límite.
type SaleFilter struct {
	BusinessID string
	StoreID    string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// SaleRepository define el puerto de persistencia para la colección sales (solo inserción y lectura).
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, error)
}
