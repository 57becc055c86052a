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

var _ repository.BusinessRepository = (*BusinessRepo)(nil)

// BusinessRepo implementación del puerto BusinessRepository sobre PostgreSQL.
type BusinessRepo struct {
	q Querier
}

// NewBusinessRepository construye el adaptador de persistencia para negocios.
func NewBusinessRepository(q Querier) *BusinessRepo {
	return &BusinessRepo{q: q}
}

// Create persiste un nuevo negocio.
func (r *BusinessRepo) Create(ctx context.Context, b *entity.Business) error {
	b.ID = newID(b.ID)
	query := `
		INSERT INTO businesses (id, name, phone, email, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, b.ID, b.Name, b.Phone, b.Email, b.OwnerID, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return mapErr("insert business", err)
	}
	return nil
}

// GetByID obtiene un negocio por ID.
func (r *BusinessRepo) GetByID(ctx context.Context, id string) (*entity.Business, error) {
	query := `SELECT id, name, phone, email, owner_id, created_at, updated_at FROM businesses WHERE id = $1`
	var b entity.Business
	err := r.q.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.Phone, &b.Email, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapErr("get business", err)
	}
	return &b, nil
}

// Update actualiza datos y dueño del negocio.
func (r *BusinessRepo) Update(ctx context.Context, b *entity.Business) error {
	query := `
		UPDATE businesses SET name = $2, phone = $3, email = $4, owner_id = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, b.ID, b.Name, b.Phone, b.Email, b.OwnerID, b.UpdatedAt)
	if err != nil {
		return mapErr("update business", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: negocio %s", domain.ErrNotFound, b.ID)
	}
	return nil
}
