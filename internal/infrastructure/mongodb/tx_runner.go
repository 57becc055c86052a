package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jhoicas/dukastock-api/internal/application/inventory"
	"github.com/jhoicas/dukastock-api/internal/application/lending"
	"github.com/jhoicas/dukastock-api/internal/application/sales"
	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner = (*TxRunner)(nil)
	_ lending.TxRunner   = (*TxRunner)(nil)
	_ sales.TxRunner     = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción multi-documento (session.WithTransaction).
// WithTransaction ya reintenta los conflictos de escritura; maxRetries acota además los reintentos
// cuando el driver agota su propio plazo.
type TxRunner struct {
	c          *Client
	maxRetries int
}

// NewTxRunner construye el runner.
func NewTxRunner(c *Client, maxRetries int) *TxRunner {
	return &TxRunner{c: c, maxRetries: maxRetries}
}

// Run transacción con el repositorio de inventario.
func (r *TxRunner) Run(ctx context.Context, fn func(items repository.InventoryItemRepository) error) error {
	return r.withTransaction(ctx, func(sess mongo.Session) error {
		return fn(r.c.items(sess))
	})
}

// RunLending transacción con inventario y libro de préstamos.
func (r *TxRunner) RunLending(ctx context.Context, fn func(
	items repository.InventoryItemRepository,
	lends repository.LendRepository,
) error) error {
	return r.withTransaction(ctx, func(sess mongo.Session) error {
		return fn(r.c.items(sess), r.c.lends(sess))
	})
}

// RunSales transacción con inventario, ventas y devoluciones.
func (r *TxRunner) RunSales(ctx context.Context, fn func(
	items repository.InventoryItemRepository,
	sales repository.SaleRepository,
	returns repository.ReturnRepository,
) error) error {
	return r.withTransaction(ctx, func(sess mongo.Session) error {
		return fn(r.c.items(sess), r.c.sales(sess), r.c.returns(sess))
	})
}

func (r *TxRunner) withTransaction(ctx context.Context, fn func(sess mongo.Session) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = r.once(ctx, fn)
		if err == nil || !isTransientTxn(err) || attempt >= r.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 20 * time.Millisecond):
		}
	}
	if err != nil && isTransientTxn(err) {
		return fmt.Errorf("%w: transacción abortada tras %d reintentos: %w", domain.ErrTransient, r.maxRetries, err)
	}
	return err
}

func (r *TxRunner) once(ctx context.Context, fn func(sess mongo.Session) error) error {
	sess, err := r.c.client.StartSession()
	if err != nil {
		return mapErr("start session", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(_ mongo.SessionContext) (any, error) {
		return nil, fn(sess)
	})
	return err
}
