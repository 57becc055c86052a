package sales

import (
	"context"

	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

// TxRunner transacción que cubre inventario, ventas y devoluciones.
type TxRunner interface {
	RunSales(ctx context.Context, fn func(
		items repository.InventoryItemRepository,
		sales repository.SaleRepository,
		returns repository.ReturnRepository,
	) error) error
}

// IdempotencyStore claves Idempotency-Key del punto de venta.
// Reserve devuelve reserved=true si la clave estaba libre; si no, saleID es la venta ya
// confirmada o vacío mientras el primer envío sigue en curso.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (saleID string, reserved bool, err error)
	Complete(ctx context.Context, key, saleID string) error
	Release(ctx context.Context, key string) error
}
