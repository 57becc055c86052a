package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dukastock-api/internal/application/access"
	"github.com/jhoicas/dukastock-api/internal/application/dto"
	"github.com/jhoicas/dukastock-api/internal/application/usecase"
	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/infrastructure/memory"
)

func seed(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.Stores().Create(ctx, &entity.Store{ID: "s1", BusinessID: "b1", Name: "Gikomba"}))
	require.NoError(t, st.Stores().Create(ctx, &entity.Store{ID: "x1", BusinessID: "b2", Name: "Otra"}))
	require.NoError(t, st.Users().Create(ctx, &entity.User{ID: "admin", BusinessID: "b1", Email: "admin@duka.test", Role: entity.RoleAdmin, Status: entity.UserStatusActive}))
	require.NoError(t, st.Users().Create(ctx, &entity.User{ID: "ana", BusinessID: "b1", StoreID: "s1", Email: "ana@duka.test", Role: entity.RoleStaff, Status: entity.UserStatusActive}))
	return st
}

func TestUserUseCase_Create(t *testing.T) {
	st := seed(t)
	uc := usecase.NewUserUseCase(access.NewGuard(st.Users()), st.Users(), st.Stores())
	ctx := context.Background()

	staff, err := uc.Create(ctx, "admin", dto.CreateUserRequest{
		Email: "Ben@Duka.test", Password: "12345678", Name: "Ben", Role: entity.RoleStaffAdmin, StoreID: "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ben@duka.test", staff.Email)
	assert.Equal(t, "b1", staff.BusinessID)
	assert.Equal(t, "s1", staff.StoreID)

	cases := map[string]struct {
		actor string
		in    dto.CreateUserRequest
		want  error
	}{
		"solo admin":         {"ana", dto.CreateUserRequest{Email: "c@d.test", Password: "12345678", Role: entity.RoleStaff, StoreID: "s1"}, domain.ErrForbidden},
		"staff sin duka":     {"admin", dto.CreateUserRequest{Email: "c@d.test", Password: "12345678", Role: entity.RoleStaff}, domain.ErrInvalidInput},
		"duka de otro":       {"admin", dto.CreateUserRequest{Email: "c@d.test", Password: "12345678", Role: entity.RoleStaff, StoreID: "x1"}, domain.ErrNotFound},
		"rol desconocido":    {"admin", dto.CreateUserRequest{Email: "c@d.test", Password: "12345678", Role: "owner"}, domain.ErrInvalidInput},
		"email repetido":     {"admin", dto.CreateUserRequest{Email: "ANA@duka.test", Password: "12345678", Role: entity.RoleStaff, StoreID: "s1"}, domain.ErrEmailAlreadyExists},
		"password muy corta": {"admin", dto.CreateUserRequest{Email: "c@d.test", Password: "123", Role: entity.RoleAdmin}, domain.ErrInvalidInput},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Create(ctx, tc.actor, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	list, err := uc.List(ctx, "admin", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 3)
}

func TestStoreUseCase_CreateYList(t *testing.T) {
	st := seed(t)
	uc := usecase.NewStoreUseCase(access.NewGuard(st.Users()), st.Stores())
	ctx := context.Background()

	_, err := uc.Create(ctx, "ana", dto.CreateStoreRequest{Name: "Toi"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	created, err := uc.Create(ctx, "admin", dto.CreateStoreRequest{Name: " Toi ", Location: "Nairobi"})
	require.NoError(t, err)
	assert.Equal(t, "Toi", created.Name)

	list, err := uc.List(ctx, "ana")
	require.NoError(t, err)
	assert.Len(t, list, 2, "solo las dukas del negocio b1")

	_, err = uc.GetByID(ctx, "ana", "x1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
