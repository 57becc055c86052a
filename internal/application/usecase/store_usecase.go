package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/dukastock-api/internal/application/access"
	"github.com/jhoicas/dukastock-api/internal/application/dto"
	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

// StoreUseCase alta y consulta de dukas del negocio.
type StoreUseCase struct {
	guard *access.Guard
	repo  repository.StoreRepository
}

// NewStoreUseCase construye el caso de uso.
func NewStoreUseCase(guard *access.Guard, repo repository.StoreRepository) *StoreUseCase {
	return &StoreUseCase{guard: guard, repo: repo}
}

// Create crea una duka (solo admin).
func (uc *StoreUseCase) Create(ctx context.Context, userID string, in dto.CreateStoreRequest) (*dto.StoreResponse, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.Admins...)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	now := time.Now()
	store := &entity.Store{
		ID:         uuid.New().String(),
		BusinessID: user.BusinessID,
		Name:       name,
		Location:   strings.TrimSpace(in.Location),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(ctx, store); err != nil {
		return nil, err
	}
	return entityToStoreResponse(store), nil
}

// GetByID obtiene una duka del negocio del usuario.
func (uc *StoreUseCase) GetByID(ctx context.Context, userID, id string) (*dto.StoreResponse, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.AnyRole...)
	if err != nil {
		return nil, err
	}
	store, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if store == nil || store.BusinessID != user.BusinessID {
		return nil, domain.ErrNotFound
	}
	return entityToStoreResponse(store), nil
}

// List lista las dukas del negocio. Todos los roles las ven (destinos de préstamo).
func (uc *StoreUseCase) List(ctx context.Context, userID string) ([]dto.StoreResponse, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.AnyRole...)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByBusiness(ctx, user.BusinessID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StoreResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *entityToStoreResponse(s))
	}
	return out, nil
}

func entityToStoreResponse(s *entity.Store) *dto.StoreResponse {
	if s == nil {
		return nil
	}
	return &dto.StoreResponse{
		ID:         s.ID,
		BusinessID: s.BusinessID,
		Name:       s.Name,
		Location:   s.Location,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}
