package lending

import (
	"context"

	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

// TxRunner transacción multi-documento para préstamos: inventario origen, inventario destino
// y libro lentshoes se confirman juntos o no se confirma nada.
type TxRunner interface {
	RunLending(ctx context.Context, fn func(
		items repository.InventoryItemRepository,
		lends repository.LendRepository,
	) error) error
}
