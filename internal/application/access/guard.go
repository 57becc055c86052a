package access

import (
	"context"
	"fmt"

	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

// Conjuntos de roles usados por los casos de uso.
var (
	AnyRole  = []string{entity.RoleAdmin, entity.RoleStaffAdmin, entity.RoleStaff}
	Managers = []string{entity.RoleAdmin, entity.RoleStaffAdmin}
	Admins   = []string{entity.RoleAdmin}
)

// Guard resuelve el actor desde la colección users y aplica rol y alcance de duka.
// El token solo identifica al usuario; el rol vigente siempre se lee del documento.
type Guard struct {
	users repository.UserRepository
}

// NewGuard construye el guard.
func NewGuard(users repository.UserRepository) *Guard {
	return &Guard{users: users}
}

// Authorize carga el usuario y verifica que esté activo y tenga uno de los roles.
func (g *Guard) Authorize(ctx context.Context, userID string, roles ...string) (*entity.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: usuario inexistente", domain.ErrForbidden)
	}
	if user.Status != entity.UserStatusActive {
		return nil, fmt.Errorf("%w: cuenta %s", domain.ErrForbidden, user.Status)
	}
	if err := RequireRole(user, roles...); err != nil {
		return nil, err
	}
	return user, nil
}

// RequireRole falla con ErrForbidden si el rol del usuario no está en roles.
func RequireRole(user *entity.User, roles ...string) error {
	for _, r := range roles {
		if user.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: rol %q no permitido", domain.ErrForbidden, user.Role)
}

// CanActOnStore verifica que la duka sea del negocio del usuario y, salvo admin, que sea su duka asignada.
func CanActOnStore(user *entity.User, businessID, storeID string) error {
	if user.BusinessID != businessID {
		return fmt.Errorf("%w: otro negocio", domain.ErrForbidden)
	}
	if user.Role == entity.RoleAdmin {
		return nil
	}
	if user.StoreID == "" || user.StoreID != storeID {
		return fmt.Errorf("%w: duka %s fuera de su alcance", domain.ErrForbidden, storeID)
	}
	return nil
}

// ScopeStore devuelve el filtro de duka efectivo para listados: los admin pueden pedir cualquiera
// (incluido entity.StoreIDAll); el resto queda fijado a su duka.
func ScopeStore(user *entity.User, requested string) string {
	if user.Role == entity.RoleAdmin {
		if requested == "" {
			return entity.StoreIDAll
		}
		return requested
	}
	return user.StoreID
}
