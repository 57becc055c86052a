package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, business_id, product_id, store_id, size, quantity, price, original_price, is_haggled,
	discount_amount, payments, total, customer_name, customer_phone, sold_by, ts`

type paymentJSON struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// SaleRepo implementación del puerto SaleRepository. Las ventas no se modifican una vez creadas.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var (
		s        entity.Sale
		payments []byte
	)
	err := row.Scan(&s.ID, &s.BusinessID, &s.ProductID, &s.StoreID, &s.Size, &s.Quantity, &s.Price, &s.OriginalPrice,
		&s.IsHaggled, &s.DiscountAmount, &payments, &s.Total, &s.CustomerName, &s.CustomerPhone, &s.SoldBy, &s.Timestamp)
	if err != nil {
		return nil, err
	}
	var pj []paymentJSON
	if len(payments) > 0 {
		if err := json.Unmarshal(payments, &pj); err != nil {
			return nil, fmt.Errorf("decode payments: %w", err)
		}
	}
	s.Payments = make([]entity.Payment, 0, len(pj))
	for _, p := range pj {
		s.Payments = append(s.Payments, entity.Payment{Method: p.Method, Amount: p.Amount, Reference: p.Reference})
	}
	return &s, nil
}

// Create inserta una venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	s.ID = newID(s.ID)
	pj := make([]paymentJSON, 0, len(s.Payments))
	for _, p := range s.Payments {
		pj = append(pj, paymentJSON{Method: p.Method, Amount: p.Amount, Reference: p.Reference})
	}
	payments, err := json.Marshal(pj)
	if err != nil {
		return fmt.Errorf("encode payments: %w", err)
	}
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = r.q.Exec(ctx, query,
		s.ID, s.BusinessID, s.ProductID, s.StoreID, s.Size, s.Quantity, s.Price, s.OriginalPrice, s.IsHaggled,
		s.DiscountAmount, payments, s.Total, s.CustomerName, s.CustomerPhone, s.SoldBy, s.Timestamp,
	)
	return mapErr("insert sale", err)
}

// GetByID obtiene una venta.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapErr("get sale", err)
	}
	return s, nil
}

// List lista ventas por negocio, duka y rango de fechas, de la más reciente a la más antigua.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	w := saleWhere(f)
	query := `SELECT ` + saleColumns + ` FROM sales` + w.sql() + ` ORDER BY ts DESC`
	query += w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapErr("list sales", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// saleWhere filtro común a ventas y devoluciones; ambos extremos inclusivos.
func saleWhere(f repository.SaleFilter) *where {
	w := &where{}
	if f.BusinessID != "" {
		w.add("business_id = ?", f.BusinessID)
	}
	if f.StoreID != "" && f.StoreID != entity.StoreIDAll {
		w.add("store_id = ?", f.StoreID)
	}
	if f.From != nil {
		w.add("ts >= ?", *f.From)
	}
	if f.To != nil {
		w.add("ts <= ?", *f.To)
	}
	return w
}
