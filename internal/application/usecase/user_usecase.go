package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/dukastock-api/internal/application/access"
	"github.com/jhoicas/dukastock-api/internal/application/dto"
	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

// UserUseCase aplica reglas de negocio para usuarios del negocio.
type UserUseCase struct {
	guard     *access.Guard
	repo      repository.UserRepository
	storeRepo repository.StoreRepository
}

// NewUserUseCase construye el caso de uso con los puertos de persistencia.
func NewUserUseCase(guard *access.Guard, repo repository.UserRepository, storeRepo repository.StoreRepository) *UserUseCase {
	return &UserUseCase{guard: guard, repo: repo, storeRepo: storeRepo}
}

// Create crea un usuario del negocio (solo admin). staff y staff-admin quedan asignados a una duka.
func (uc *UserUseCase) Create(ctx context.Context, userID string, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	admin, err := uc.guard.Authorize(ctx, userID, access.Admins...)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case email == "" || !strings.Contains(email, "@"):
		return nil, fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	case len(in.Password) < 8:
		return nil, fmt.Errorf("%w: password de al menos 8 caracteres", domain.ErrInvalidInput)
	case !entity.IsValidRole(in.Role):
		return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, in.Role)
	}
	storeID := strings.TrimSpace(in.StoreID)
	if in.Role != entity.RoleAdmin {
		if storeID == "" {
			return nil, fmt.Errorf("%w: store_id requerido para %s", domain.ErrInvalidInput, in.Role)
		}
		store, err := uc.storeRepo.GetByID(ctx, storeID)
		if err != nil {
			return nil, err
		}
		if store == nil || store.BusinessID != admin.BusinessID {
			return nil, fmt.Errorf("%w: duka %s", domain.ErrNotFound, storeID)
		}
	}
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		BusinessID:   admin.BusinessID,
		StoreID:      storeID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         in.Role,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// GetByID obtiene un usuario del mismo negocio.
func (uc *UserUseCase) GetByID(ctx context.Context, userID, id string) (*dto.UserResponse, error) {
	actor, err := uc.guard.Authorize(ctx, userID, access.AnyRole...)
	if err != nil {
		return nil, err
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || user.BusinessID != actor.BusinessID {
		return nil, fmt.Errorf("%w: usuario %s", domain.ErrNotFound, id)
	}
	return entityToUserResponse(user), nil
}

// List lista usuarios del negocio (solo admin).
func (uc *UserUseCase) List(ctx context.Context, userID string, page dto.PageRequest) (*dto.UserListResponse, error) {
	admin, err := uc.guard.Authorize(ctx, userID, access.Admins...)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repo.ListByBusiness(ctx, admin.BusinessID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *entityToUserResponse(u))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  page.Response(),
	}, nil
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:         u.ID,
		BusinessID: u.BusinessID,
		StoreID:    u.StoreID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
