package inventory

import (
	"context"

	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del almacén, pasando el repositorio
// de inventario atado a esa transacción. Commit si fn devuelve nil, rollback en otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(items repository.InventoryItemRepository) error) error
}
