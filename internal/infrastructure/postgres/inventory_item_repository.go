package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

const itemColumns = `id, business_id, store_id, at_no, name, brand, category, age_group, gender, sizes, colors,
	price, stock, incomplete_pairs, notes, created_at, updated_at`

// InventoryItemRepo implementación del puerto InventoryItemRepository sobre PostgreSQL (usable con pool o tx).
// Las variantes ForUpdate solo bloquean dentro de una transacción.
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var i entity.InventoryItem
	err := row.Scan(&i.ID, &i.BusinessID, &i.StoreID, &i.AtNo, &i.Name, &i.Brand, &i.Category, &i.AgeGroup, &i.Gender,
		&i.Sizes, &i.Colors, &i.Price, &i.Stock, &i.IncompletePairs, &i.Notes, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *InventoryItemRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.InventoryItem, error) {
	item, err := scanItem(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapErr(op, err)
	}
	return item, nil
}

// Create persiste una línea de inventario. (store_id, at_no) es único.
func (r *InventoryItemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	item.ID = newID(item.ID)
	query := `
		INSERT INTO inventory (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.BusinessID, item.StoreID, item.AtNo, item.Name, item.Brand, item.Category, item.AgeGroup, item.Gender,
		labels(item.Sizes), labels(item.Colors), item.Price, item.Stock, item.IncompletePairs, item.Notes,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return mapErr("insert inventory item", err)
	}
	return nil
}

// GetByID obtiene una línea por ID.
func (r *InventoryItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, "get inventory item", `SELECT `+itemColumns+` FROM inventory WHERE id = $1`, id)
}

// GetForUpdate obtiene la línea con bloqueo de fila (SELECT ... FOR UPDATE).
func (r *InventoryItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, "get inventory item for update",
		`SELECT `+itemColumns+` FROM inventory WHERE id = $1 FOR UPDATE`, id)
}

// GetByStoreAndAtNoForUpdate obtiene la línea de una duka por @No con bloqueo de fila.
func (r *InventoryItemRepo) GetByStoreAndAtNoForUpdate(ctx context.Context, storeID, atNo string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, "get inventory item by at_no for update",
		`SELECT `+itemColumns+` FROM inventory WHERE store_id = $1 AND at_no = $2 FOR UPDATE`, storeID, atNo)
}

// Update reescribe la línea completa.
func (r *InventoryItemRepo) Update(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		UPDATE inventory SET at_no = $2, name = $3, brand = $4, category = $5, age_group = $6, gender = $7,
			sizes = $8, colors = $9, price = $10, stock = $11, incomplete_pairs = $12, notes = $13, updated_at = $14
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		item.ID, item.AtNo, item.Name, item.Brand, item.Category, item.AgeGroup, item.Gender,
		labels(item.Sizes), labels(item.Colors), item.Price, item.Stock, item.IncompletePairs, item.Notes, item.UpdatedAt,
	)
	if err != nil {
		return mapErr("update inventory item", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, item.ID)
	}
	return nil
}

// List lista líneas del negocio ordenadas por duka y @No.
func (r *InventoryItemRepo) List(ctx context.Context, f repository.ItemFilter) ([]*entity.InventoryItem, error) {
	var w where
	if f.BusinessID != "" {
		w.add("business_id = ?", f.BusinessID)
	}
	if f.StoreID != "" && f.StoreID != entity.StoreIDAll {
		w.add("store_id = ?", f.StoreID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		w.add("(at_no ILIKE ? OR name ILIKE ? OR brand ILIKE ?)", likePattern(s))
	}
	query := `SELECT ` + itemColumns + ` FROM inventory` + w.sql() + ` ORDER BY store_id, at_no`
	query += w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapErr("list inventory", err)
	}
	defer rows.Close()
	var list []*entity.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

// Delete elimina la línea. Ventas y préstamos conservan sus referencias.
func (r *InventoryItemRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM inventory WHERE id = $1`, id)
	if err != nil {
		return mapErr("delete inventory item", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, id)
	}
	return nil
}

// labels evita NULL en columnas TEXT[] NOT NULL.
func labels(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
