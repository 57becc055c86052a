package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

const returnColumns = `id, business_id, sale_id, product_id, store_id, size, quantity, price, total, return_reason,
	inventory_restored, processed_by, ts`

// ReturnRepo implementación del puerto ReturnRepository. sale_id es único: una devolución por venta.
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador de devoluciones. Pasar pool o tx (Querier).
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

func scanReturn(row pgx.Row) (*entity.SaleReturn, error) {
	var r entity.SaleReturn
	err := row.Scan(&r.ID, &r.BusinessID, &r.SaleID, &r.ProductID, &r.StoreID, &r.Size, &r.Quantity, &r.Price, &r.Total,
		&r.ReturnReason, &r.InventoryRestored, &r.ProcessedBy, &r.Timestamp)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserta la devolución; domain.ErrDuplicate si la venta ya tiene una.
func (r *ReturnRepo) Create(ctx context.Context, ret *entity.SaleReturn) error {
	ret.ID = newID(ret.ID)
	query := `
		INSERT INTO returns (` + returnColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		ret.ID, ret.BusinessID, ret.SaleID, ret.ProductID, ret.StoreID, ret.Size, ret.Quantity, ret.Price, ret.Total,
		ret.ReturnReason, ret.InventoryRestored, ret.ProcessedBy, ret.Timestamp,
	)
	return mapErr("insert return", err)
}

// GetBySaleID obtiene la devolución de una venta.
func (r *ReturnRepo) GetBySaleID(ctx context.Context, saleID string) (*entity.SaleReturn, error) {
	ret, err := scanReturn(r.q.QueryRow(ctx, `SELECT `+returnColumns+` FROM returns WHERE sale_id = $1`, saleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapErr("get return", err)
	}
	return ret, nil
}

// List lista devoluciones con el mismo filtro que las ventas.
func (r *ReturnRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.SaleReturn, error) {
	w := saleWhere(f)
	query := `SELECT ` + returnColumns + ` FROM returns` + w.sql() + ` ORDER BY ts DESC`
	query += w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapErr("list returns", err)
	}
	defer rows.Close()
	var list []*entity.SaleReturn
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan return: %w", err)
		}
		list = append(list, ret)
	}
	return list, rows.Err()
}
