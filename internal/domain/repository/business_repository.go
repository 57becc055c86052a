package repository

import (
	"context"

	"github.com/jhoicas/dukastock-api/internal/domain/entity"
)

// BusinessRepository define el puerto de persistencia para Business (colección businesses).
type BusinessRepository interface {
	Create(ctx context.Context, business *entity.Business) error
	GetByID(ctx context.Context, id string) (*entity.Business, error)
	Update(ctx context.Context, business *entity.Business) error
}
