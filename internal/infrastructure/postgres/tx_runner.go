package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

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

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Los fallos de serialización y deadlocks se reintentan hasta maxRetries veces con espera creciente.
type TxRunner struct {
	pool       *pgxpool.Pool
	maxRetries int
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, maxRetries int) *TxRunner {
	return &TxRunner{pool: pool, maxRetries: maxRetries}
}

// Run inicia una transacción con el repositorio de inventario atado a la tx.
func (r *TxRunner) Run(ctx context.Context, fn func(items repository.InventoryItemRepository) error) error {
	return r.withRetry(ctx, func(tx pgx.Tx) error {
		return fn(NewInventoryItemRepository(tx))
	})
}

// RunLending inicia una transacción con inventario y libro de préstamos.
func (r *TxRunner) RunLending(ctx context.Context, fn func(
	items repository.InventoryItemRepository,
	lends repository.LendRepository,
) error) error {
	return r.withRetry(ctx, func(tx pgx.Tx) error {
		return fn(NewInventoryItemRepository(tx), NewLendRepository(tx))
	})
}

// RunSales inicia una transacción con inventario, ventas y devoluciones.
func (r *TxRunner) RunSales(ctx context.Context, fn func(
	items repository.InventoryItemRepository,
	sales repository.SaleRepository,
	returns repository.ReturnRepository,
) error) error {
	return r.withRetry(ctx, func(tx pgx.Tx) error {
		return fn(NewInventoryItemRepository(tx), NewSaleRepository(tx), NewReturnRepository(tx))
	})
}

func (r *TxRunner) withRetry(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = r.once(ctx, fn)
		if err == nil || !isRetryable(err) || attempt >= r.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 20 * time.Millisecond):
		}
	}
	if err != nil && isRetryable(err) {
		return fmt.Errorf("%w: transacción abortada tras %d reintentos: %v", domain.ErrTransient, r.maxRetries, err)
	}
	return err
}

// once: Commit si fn devuelve nil, Rollback en otro caso.
func (r *TxRunner) once(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isRetryable(err) || errors.Is(err, context.Canceled) {
			return err
		}
		return mapErr("commit transaction", err)
	}
	return nil
}
