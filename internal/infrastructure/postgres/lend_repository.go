package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

var _ repository.LendRepository = (*LendRepo)(nil)

const lendColumns = `id, business_id, item_id, dest_item_id, from_store_id, to_store_id, from_staff_id, to_staff_id,
	lend_type, quantity, single_effect, status, item_details, lent_by, lent_date, return_date, processed_at, processed_by`

// snapshotJSON forma de item_details en la columna JSONB.
type snapshotJSON struct {
	AtNo     string          `json:"atNo"`
	Name     string          `json:"name"`
	Brand    string          `json:"brand,omitempty"`
	Category string          `json:"category,omitempty"`
	Sizes    []string        `json:"sizes"`
	Colors   []string        `json:"colors"`
	Price    decimal.Decimal `json:"price"`
}

// LendRepo implementación del puerto LendRepository (tabla lentshoes).
type LendRepo struct {
	q Querier
}

// NewLendRepository construye el adaptador del libro de préstamos. Pasar pool o tx (Querier).
func NewLendRepository(q Querier) *LendRepo {
	return &LendRepo{q: q}
}

func scanLend(row pgx.Row) (*entity.Lend, error) {
	var (
		l       entity.Lend
		details []byte
	)
	err := row.Scan(&l.ID, &l.BusinessID, &l.ItemID, &l.DestItemID, &l.FromStoreID, &l.ToStoreID, &l.FromStaffID, &l.ToStaffID,
		&l.LendType, &l.Quantity, &l.SingleEffect, &l.Status, &details, &l.LentBy, &l.LentDate, &l.ReturnDate,
		&l.ProcessedAt, &l.ProcessedBy)
	if err != nil {
		return nil, err
	}
	var snap snapshotJSON
	if len(details) > 0 {
		if err := json.Unmarshal(details, &snap); err != nil {
			return nil, fmt.Errorf("decode item_details: %w", err)
		}
	}
	l.ItemDetails = entity.ItemSnapshot{
		AtNo: snap.AtNo, Name: snap.Name, Brand: snap.Brand, Category: snap.Category,
		Sizes: snap.Sizes, Colors: snap.Colors, Price: snap.Price,
	}
	return &l, nil
}

func encodeSnapshot(s entity.ItemSnapshot) ([]byte, error) {
	return json.Marshal(snapshotJSON{
		AtNo: s.AtNo, Name: s.Name, Brand: s.Brand, Category: s.Category,
		Sizes: labels(s.Sizes), Colors: labels(s.Colors), Price: s.Price,
	})
}

// Create inserta un préstamo.
func (r *LendRepo) Create(ctx context.Context, l *entity.Lend) error {
	l.ID = newID(l.ID)
	details, err := encodeSnapshot(l.ItemDetails)
	if err != nil {
		return fmt.Errorf("encode item_details: %w", err)
	}
	query := `
		INSERT INTO lentshoes (` + lendColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err = r.q.Exec(ctx, query,
		l.ID, l.BusinessID, l.ItemID, l.DestItemID, l.FromStoreID, l.ToStoreID, l.FromStaffID, l.ToStaffID,
		l.LendType, l.Quantity, l.SingleEffect, l.Status, details, l.LentBy, l.LentDate, l.ReturnDate,
		l.ProcessedAt, l.ProcessedBy,
	)
	return mapErr("insert lend", err)
}

func (r *LendRepo) getOne(ctx context.Context, op, query, id string) (*entity.Lend, error) {
	l, err := scanLend(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapErr(op, err)
	}
	return l, nil
}

// GetByID obtiene un préstamo.
func (r *LendRepo) GetByID(ctx context.Context, id string) (*entity.Lend, error) {
	return r.getOne(ctx, "get lend", `SELECT `+lendColumns+` FROM lentshoes WHERE id = $1`, id)
}

// GetForUpdate obtiene el préstamo con bloqueo de fila.
func (r *LendRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lend, error) {
	return r.getOne(ctx, "get lend for update", `SELECT `+lendColumns+` FROM lentshoes WHERE id = $1 FOR UPDATE`, id)
}

// Update persiste las transiciones de estado del préstamo.
func (r *LendRepo) Update(ctx context.Context, l *entity.Lend) error {
	query := `
		UPDATE lentshoes SET dest_item_id = $2, status = $3, return_date = $4, processed_at = $5, processed_by = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, l.ID, l.DestItemID, l.Status, l.ReturnDate, l.ProcessedAt, l.ProcessedBy)
	if err != nil {
		return mapErr("update lend", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: préstamo %s", domain.ErrNotFound, l.ID)
	}
	return nil
}

// List lista préstamos donde la duka es origen o destino, del más reciente al más antiguo.
func (r *LendRepo) List(ctx context.Context, f repository.LendFilter) ([]*entity.Lend, error) {
	var w where
	if f.BusinessID != "" {
		w.add("business_id = ?", f.BusinessID)
	}
	if f.StoreID != "" && f.StoreID != entity.StoreIDAll {
		w.add("(from_store_id = ? OR to_store_id = ?)", f.StoreID)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	query := `SELECT ` + lendColumns + ` FROM lentshoes` + w.sql() + ` ORDER BY lent_date DESC`
	query += w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapErr("list lends", err)
	}
	defer rows.Close()
	var list []*entity.Lend
	for rows.Next() {
		l, err := scanLend(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lend: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
