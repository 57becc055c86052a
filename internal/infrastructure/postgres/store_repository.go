package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

var _ repository.StoreRepository = (*StoreRepo)(nil)

// StoreRepo implementación del puerto StoreRepository sobre PostgreSQL.
type StoreRepo struct {
	q Querier
}

// NewStoreRepository construye el adaptador de persistencia para dukas.
func NewStoreRepository(q Querier) *StoreRepo {
	return &StoreRepo{q: q}
}

// Create persiste una duka. El ID "all" está reservado.
func (r *StoreRepo) Create(ctx context.Context, s *entity.Store) error {
	s.ID = newID(s.ID)
	if s.ID == entity.StoreIDAll {
		return fmt.Errorf("%w: id de duka reservado", domain.ErrInvalidInput)
	}
	query := `
		INSERT INTO stores (id, business_id, name, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, s.ID, s.BusinessID, s.Name, s.Location, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return mapErr("insert store", err)
	}
	return nil
}

// GetByID obtiene una duka por ID.
func (r *StoreRepo) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	query := `SELECT id, business_id, name, location, created_at, updated_at FROM stores WHERE id = $1`
	var s entity.Store
	err := r.q.QueryRow(ctx, query, id).Scan(&s.ID, &s.BusinessID, &s.Name, &s.Location, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapErr("get store", err)
	}
	return &s, nil
}

// ListByBusiness lista las dukas del negocio por nombre.
func (r *StoreRepo) ListByBusiness(ctx context.Context, businessID string) ([]*entity.Store, error) {
	query := `
		SELECT id, business_id, name, location, created_at, updated_at
		FROM stores WHERE business_id = $1 ORDER BY name`
	rows, err := r.q.Query(ctx, query, businessID)
	if err != nil {
		return nil, mapErr("list stores", err)
	}
	defer rows.Close()
	var list []*entity.Store
	for rows.Next() {
		var s entity.Store
		if err := rows.Scan(&s.ID, &s.BusinessID, &s.Name, &s.Location, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
