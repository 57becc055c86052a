package repository

import (
	"context"

	"github.com/jhoicas/dukastock-api/internal/domain/entity"
)

// LendFilter filtros del libro de préstamos. StoreID coincide como origen o destino.
type LendFilter struct {
	BusinessID string
	StoreID    string
	Status     string
	Limit      int
	Offset     int
}

// LendRepository define el puerto de persistencia para la colección lentshoes.
type LendRepository interface {
	Create(ctx context.Context, lend *entity.Lend) error
	GetByID(ctx context.Context, id string) (*entity.Lend, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Lend, error)
	Update(ctx context.Context, lend *entity.Lend) error
	List(ctx context.Context, filter LendFilter) ([]*entity.Lend, error)
}
