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

// BusinessUseCase aplica reglas de negocio para negocios (tenants).
type BusinessUseCase struct {
	guard *access.Guard
	repo  repository.BusinessRepository
}

// NewBusinessUseCase construye el caso de uso con el puerto de persistencia.
func NewBusinessUseCase(guard *access.Guard, repo repository.BusinessRepository) *BusinessUseCase {
	return &BusinessUseCase{guard: guard, repo: repo}
}

// Create crea un negocio sin dueño; el dueño se registra después con /api/auth/register.
func (uc *BusinessUseCase) Create(ctx context.Context, in dto.CreateBusinessRequest) (*dto.BusinessResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	now := time.Now()
	business := &entity.Business{
		ID:        uuid.New().String(),
		Name:      name,
		Phone:     strings.TrimSpace(in.Phone),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, business); err != nil {
		return nil, err
	}
	return entityToBusinessResponse(business), nil
}

// GetByID obtiene el negocio del usuario; otro negocio responde como inexistente.
func (uc *BusinessUseCase) GetByID(ctx context.Context, userID, id string) (*dto.BusinessResponse, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.AnyRole...)
	if err != nil {
		return nil, err
	}
	if id != user.BusinessID {
		return nil, domain.ErrNotFound
	}
	business, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if business == nil {
		return nil, domain.ErrNotFound
	}
	return entityToBusinessResponse(business), nil
}

func entityToBusinessResponse(b *entity.Business) *dto.BusinessResponse {
	if b == nil {
		return nil
	}
	return &dto.BusinessResponse{
		ID:        b.ID,
		Name:      b.Name,
		Phone:     b.Phone,
		Email:     b.Email,
		HasOwner:  b.OwnerID != "",
		CreatedAt: b.CreatedAt,
	}
}
