package access_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dukastock-api/internal/application/access"
	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/infrastructure/memory"
)

func seedUsers(t *testing.T) *memory.Store {
	t.Helper()
	st := memory.New()
	ctx := context.Background()
	for _, u := range []*entity.User{
		{ID: "u-admin", BusinessID: "b1", Role: entity.RoleAdmin, Status: entity.UserStatusActive},
		{ID: "u-staff", BusinessID: "b1", StoreID: "s1", Role: entity.RoleStaff, Status: entity.UserStatusActive},
		{ID: "u-off", BusinessID: "b1", StoreID: "s1", Role: entity.RoleStaffAdmin, Status: entity.UserStatusSuspended},
	} {
		require.NoError(t, st.Users().Create(ctx, u))
	}
	return st
}

func TestAuthorize_RolLeidoDelDocumento(t *testing.T) {
	g := access.NewGuard(seedUsers(t).Users())
	ctx := context.Background()

	user, err := g.Authorize(ctx, "u-staff", access.AnyRole...)
	require.NoError(t, err)
	assert.Equal(t, "s1", user.StoreID)

	_, err = g.Authorize(ctx, "u-staff", access.Managers...)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = g.Authorize(ctx, "u-off", access.AnyRole...)
	assert.ErrorIs(t, err, domain.ErrForbidden, "usuario suspendido")

	_, err = g.Authorize(ctx, "nadie", access.AnyRole...)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = g.Authorize(ctx, "", access.AnyRole...)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCanActOnStore(t *testing.T) {
	admin := &entity.User{BusinessID: "b1", Role: entity.RoleAdmin}
	staff := &entity.User{BusinessID: "b1", StoreID: "s1", Role: entity.RoleStaff}

	assert.NoError(t, access.CanActOnStore(admin, "b1", "s2"))
	assert.ErrorIs(t, access.CanActOnStore(admin, "b2", "s9"), domain.ErrForbidden)
	assert.NoError(t, access.CanActOnStore(staff, "b1", "s1"))
	assert.ErrorIs(t, access.CanActOnStore(staff, "b1", "s2"), domain.ErrForbidden)
}

func TestScopeStore(t *testing.T) {
	admin := &entity.User{Role: entity.RoleAdmin}
	staff := &entity.User{StoreID: "s1", Role: entity.RoleStaff}

	assert.Equal(t, entity.StoreIDAll, access.ScopeStore(admin, ""))
	assert.Equal(t, "s2", access.ScopeStore(admin, "s2"))
	assert.Equal(t, "s1", access.ScopeStore(staff, entity.StoreIDAll))
}
