package repository

import (
	"context"

	"github.com/jhoicas/dukastock-api/internal/domain/entity"
)

// StoreRepository define el puerto de persistencia para las dukas.
type StoreRepository interface {
	Create(ctx context.Context, store *entity.Store) error
	GetByID(ctx context.Context, id string) (*entity.Store, error)
	ListByBusiness(ctx context.Context, businessID string) ([]*entity.Store, error)
}
