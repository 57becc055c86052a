package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dukastock-api/internal/application/auth"
	"github.com/jhoicas/dukastock-api/internal/application/dto"
	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/infrastructure/memory"
	"github.com/jhoicas/dukastock-api/pkg/jwt"
)

const testSecret = "secreto-de-pruebas"

func newAuth(t *testing.T) (*memory.Store, *auth.AuthUseCase) {
	t.Helper()
	st := memory.New()
	require.NoError(t, st.Businesses().Create(context.Background(), &entity.Business{ID: "b1", Name: "Duka Shoes"}))
	uc := auth.NewAuthUseCase(st.Users(), st.Businesses(), auth.JWTConfig{Secret: testSecret, ExpMinutes: 5, Issuer: "dukastock"})
	return st, uc
}

func TestRegisterOwner_SoloUnaVez(t *testing.T) {
	st, uc := newAuth(t)
	ctx := context.Background()

	owner, err := uc.RegisterOwner(ctx, dto.RegisterRequest{Email: "Owner@Duka.test", Password: "12345678", BusinessID: "b1"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, owner.Role)
	assert.Equal(t, "owner@duka.test", owner.Email)

	b, err := st.Businesses().GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, b.OwnerID)

	_, err = uc.RegisterOwner(ctx, dto.RegisterRequest{Email: "otro@duka.test", Password: "12345678", BusinessID: "b1"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.RegisterOwner(ctx, dto.RegisterRequest{Email: "x@duka.test", Password: "12345678", BusinessID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.RegisterOwner(ctx, dto.RegisterRequest{Email: "x@duka.test", Password: "corta", BusinessID: "b1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin(t *testing.T) {
	st, uc := newAuth(t)
	ctx := context.Background()
	_, err := uc.RegisterOwner(ctx, dto.RegisterRequest{Email: "owner@duka.test", Password: "12345678", BusinessID: "b1"})
	require.NoError(t, err)

	resp, err := uc.Login(ctx, dto.LoginRequest{Email: "owner@duka.test", Password: "12345678"})
	require.NoError(t, err)
	id, err := jwt.Parse(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, id.UserID)
	assert.Equal(t, "b1", id.BusinessID)
	assert.Equal(t, entity.RoleAdmin, id.Role)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "owner@duka.test", Password: "mala"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@duka.test", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	user, err := st.Users().GetByEmail(ctx, "owner@duka.test")
	require.NoError(t, err)
	user.Status = entity.UserStatusSuspended
	require.NoError(t, st.Users().Update(ctx, user))
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "owner@duka.test", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
