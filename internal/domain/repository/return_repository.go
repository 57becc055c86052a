package repository

import (
	"context"

	"github.com/jhoicas/dukastock-api/internal/domain/entity"
)

// ReturnRepository define el puerto de persistencia para la colección returns.
// Create devuelve domain.ErrDuplicate si la venta ya tiene devolución.
type ReturnRepository interface {
	Create(ctx context.Context, ret *entity.SaleReturn) error
	GetBySaleID(ctx context.Context, saleID string) (*entity.SaleReturn, error)
	List(ctx context.Context, filter SaleFilter) ([]*entity.SaleReturn, error)
}
