package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dukastock-api/internal/application/access"
	"github.com/jhoicas/dukastock-api/internal/application/dto"
	"github.com/jhoicas/dukastock-api/internal/application/inventory"
	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/infrastructure/memory"
)

func newItemFixture(t *testing.T) (*memory.Store, *inventory.ItemUseCase) {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.Stores().Create(ctx, &entity.Store{ID: "s1", BusinessID: "b1", Name: "Gikomba"}))
	require.NoError(t, st.Stores().Create(ctx, &entity.Store{ID: "s2", BusinessID: "b1", Name: "Toi"}))
	for _, u := range []*entity.User{
		{ID: "admin", BusinessID: "b1", Email: "admin@duka.test", Role: entity.RoleAdmin, Status: entity.UserStatusActive},
		{ID: "boss", BusinessID: "b1", StoreID: "s1", Email: "boss@duka.test", Role: entity.RoleStaffAdmin, Status: entity.UserStatusActive},
		{ID: "ana", BusinessID: "b1", StoreID: "s1", Email: "ana@duka.test", Role: entity.RoleStaff, Status: entity.UserStatusActive},
	} {
		require.NoError(t, st.Users().Create(ctx, u))
	}
	uc := inventory.NewItemUseCase(access.NewGuard(st.Users()), st.Items(), st.Stores(), st, nil)
	return st, uc
}

func createReq() dto.CreateItemRequest {
	return dto.CreateItemRequest{
		AtNo: " A12 ", Name: "Air Max", Brand: "NIKE  air", Category: "sneakers", Gender: "men",
		Sizes: dto.LabelList{"40", " 41", "", "40"}, Colors: dto.LabelList{"Black"},
		Price: decimal.NewFromInt(3500), Stock: 4, IncompletePairs: 1,
	}
}

func TestItemCreate_NormalizaYDeriva(t *testing.T) {
	_, uc := newItemFixture(t)

	item, err := uc.Create(context.Background(), "boss", createReq())
	require.NoError(t, err)
	assert.Equal(t, "s1", item.StoreID, "staff-admin crea en su duka")
	assert.Equal(t, "A12", item.AtNo)
	assert.Equal(t, "Nike Air", item.Brand)
	assert.Equal(t, "Sneakers", item.Category)
	assert.Equal(t, []string{"40", "41"}, item.Sizes)
	assert.Equal(t, 3, item.CompletePairs)
	assert.Equal(t, 7, item.TotalShoes)
}

func TestItemCreate_Rechazos(t *testing.T) {
	_, uc := newItemFixture(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, "ana", createReq())
	assert.ErrorIs(t, err, domain.ErrForbidden, "staff no crea inventario")

	bad := createReq()
	bad.IncompletePairs = 9
	_, err = uc.Create(ctx, "boss", bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	other := createReq()
	other.StoreID = "s2"
	_, err = uc.Create(ctx, "boss", other)
	assert.ErrorIs(t, err, domain.ErrForbidden, "staff-admin solo en su duka")

	noStore := createReq()
	_, err = uc.Create(ctx, "admin", noStore)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "admin debe indicar la duka")

	_, err = uc.Create(ctx, "boss", createReq())
	require.NoError(t, err)
	_, err = uc.Create(ctx, "boss", createReq())
	assert.ErrorIs(t, err, domain.ErrDuplicate, "@No único por duka")

	sameAtNoOtherStore := createReq()
	sameAtNoOtherStore.StoreID = "s2"
	_, err = uc.Create(ctx, "admin", sameAtNoOtherStore)
	assert.NoError(t, err)
}

func TestItemUpdate_ValidaInvariante(t *testing.T) {
	_, uc := newItemFixture(t)
	ctx := context.Background()
	item, err := uc.Create(ctx, "boss", createReq())
	require.NoError(t, err)

	stock := 0
	_, err = uc.Update(ctx, "boss", item.ID, dto.UpdateItemRequest{Stock: &stock})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "incompletos quedaría mayor que stock")

	inc := 0
	sizes := dto.LabelList{"42"}
	updated, err := uc.Update(ctx, "boss", item.ID, dto.UpdateItemRequest{Stock: &stock, IncompletePairs: &inc, Sizes: &sizes})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)
	assert.Equal(t, []string{"42"}, updated.Sizes)
}

func TestItemDelete_SoloAdmin(t *testing.T) {
	_, uc := newItemFixture(t)
	ctx := context.Background()
	item, err := uc.Create(ctx, "boss", createReq())
	require.NoError(t, err)

	assert.ErrorIs(t, uc.Delete(ctx, "boss", item.ID), domain.ErrForbidden)
	require.NoError(t, uc.Delete(ctx, "admin", item.ID))
	_, err = uc.Get(ctx, "admin", item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemListYSummary(t *testing.T) {
	_, uc := newItemFixture(t)
	ctx := context.Background()
	_, err := uc.Create(ctx, "boss", createReq())
	require.NoError(t, err)
	other := createReq()
	other.StoreID, other.AtNo, other.Stock, other.IncompletePairs = "s2", "B7", 2, 0
	other.Name = "Jordan"
	_, err = uc.Create(ctx, "admin", other)
	require.NoError(t, err)

	all, err := uc.List(ctx, "admin", entity.StoreIDAll, "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	mine, err := uc.List(ctx, "ana", entity.StoreIDAll, "", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1, "staff queda fijado a su duka")
	assert.Equal(t, "s1", mine.Items[0].StoreID)

	found, err := uc.List(ctx, "admin", "", "jord", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "B7", found.Items[0].AtNo)

	sum, err := uc.Summary(ctx, "admin", "")
	require.NoError(t, err)
	assert.Len(t, sum.Stores, 2)
	assert.Equal(t, 6, sum.Total.Stock)
	assert.Equal(t, 5, sum.Total.CompletePairs)
	assert.Equal(t, 11, sum.Total.TotalShoes)
	assert.True(t, decimal.NewFromInt(3500*5).Equal(sum.Total.StockValue))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Nike Air", inventory.TitleCase("  nIKE   AIR "))
	assert.Equal(t, "", inventory.TitleCase("   "))
}

// ──────────────────────────────────────────────────────────────────────────────
// Auditoría
// ──────────────────────────────────────────────────────────────────────────────

func TestAudit_DetectaInconsistenciasYVencidos(t *testing.T) {
	st, _ := newItemFixture(t)
	ctx := context.Background()

	// Documento heredado que rompe el invariante: se reporta, no se corrige.
	require.NoError(t, st.Items().Create(ctx, &entity.InventoryItem{
		ID: "legacy", BusinessID: "b1", StoreID: "s1", AtNo: "OLD", Stock: 1, IncompletePairs: 3,
	}))
	require.NoError(t, st.Lends().Create(ctx, &entity.Lend{
		ID: "l-old", BusinessID: "b1", FromStoreID: "s1", ToStoreID: "s2",
		Status: entity.LendStatusLent, LentDate: time.Now().Add(-30 * 24 * time.Hour),
	}))
	require.NoError(t, st.Lends().Create(ctx, &entity.Lend{
		ID: "l-new", BusinessID: "b1", FromStoreID: "s1", ToStoreID: "s2",
		Status: entity.LendStatusLent, LentDate: time.Now(),
	}))

	audit := inventory.NewAuditUseCase(access.NewGuard(st.Users()), st.Items(), st.Lends(), 14, nil)
	_, err := audit.RunForUser(ctx, "boss")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	report, err := audit.RunForUser(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, report.ItemsScanned)
	assert.Equal(t, []string{"legacy"}, report.Violations)
	assert.Equal(t, 2, report.OpenLends)
	assert.Equal(t, []string{"l-old"}, report.OverdueLends)

	item, err := st.Items().GetByID(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, 3, item.IncompletePairs)
}
