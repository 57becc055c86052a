package sales_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dukastock-api/internal/application/access"
	"github.com/jhoicas/dukastock-api/internal/application/dto"
	"github.com/jhoicas/dukastock-api/internal/application/sales"
	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/infrastructure/cache"
	"github.com/jhoicas/dukastock-api/internal/infrastructure/memory"
)

func newSalesFixture(t *testing.T, stock int) (*memory.Store, *sales.UseCase) {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.Stores().Create(ctx, &entity.Store{ID: "s1", BusinessID: "b1", Name: "Gikomba"}))
	for _, u := range []*entity.User{
		{ID: "admin", BusinessID: "b1", Email: "admin@duka.test", Role: entity.RoleAdmin, Status: entity.UserStatusActive},
		{ID: "boss", BusinessID: "b1", StoreID: "s1", Email: "boss@duka.test", Role: entity.RoleStaffAdmin, Status: entity.UserStatusActive},
		{ID: "ana", BusinessID: "b1", StoreID: "s1", Email: "ana@duka.test", Role: entity.RoleStaff, Status: entity.UserStatusActive},
		{ID: "ben", BusinessID: "b1", StoreID: "s2", Email: "ben@duka.test", Role: entity.RoleStaff, Status: entity.UserStatusActive},
	} {
		require.NoError(t, st.Users().Create(ctx, u))
	}
	require.NoError(t, st.Items().Create(ctx, &entity.InventoryItem{
		ID: "item-1", BusinessID: "b1", StoreID: "s1", AtNo: "A12", Name: "Air Max",
		Sizes: []string{"40", "41"}, Colors: []string{"Black"},
		Price: decimal.NewFromInt(3500), Stock: stock,
	}))
	uc := sales.NewUseCase(access.NewGuard(st.Users()), st, st.Sales(), st.Returns(), cache.NewMemoryIdempotencyStore(time.Hour), nil)
	return st, uc
}

func saleReq(qty int, price int64) dto.RecordSaleRequest {
	total := decimal.NewFromInt(price * int64(qty))
	return dto.RecordSaleRequest{
		ProductID: "item-1", Size: "40", Quantity: qty, Price: decimal.NewFromInt(price),
		Payments: []dto.PaymentDTO{{Method: "cash", Amount: total}},
	}
}

func stockOf(t *testing.T, st *memory.Store) int {
	t.Helper()
	item, err := st.Items().GetByID(context.Background(), "item-1")
	require.NoError(t, err)
	require.NotNil(t, item)
	return item.Stock
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordSale_DescuentaYRegistraRegateo(t *testing.T) {
	st, uc := newSalesFixture(t, 5)
	ctx := context.Background()

	req := saleReq(2, 3000)
	req.Payments = []dto.PaymentDTO{
		{Method: "Cash", Amount: decimal.NewFromInt(2000)},
		{Method: "mpesa", Amount: decimal.NewFromInt(4000), Reference: "QK12"},
	}
	sale, err := uc.RecordSale(ctx, "ana", "", req)
	require.NoError(t, err)

	assert.Equal(t, 3, stockOf(t, st))
	assert.True(t, sale.IsHaggled)
	assert.True(t, decimal.NewFromInt(3500).Equal(sale.OriginalPrice))
	assert.True(t, decimal.NewFromInt(1000).Equal(sale.DiscountAmount))
	assert.True(t, decimal.NewFromInt(6000).Equal(sale.Total))
	assert.Equal(t, "s1", sale.StoreID)
	assert.Equal(t, "cash", sale.Payments[0].Method)
}

func TestRecordSale_StockInsuficiente(t *testing.T) {
	st, uc := newSalesFixture(t, 2)
	ctx := context.Background()

	_, err := uc.RecordSale(ctx, "ana", "", saleReq(3, 3500))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 2, stockOf(t, st))

	list, err := uc.ListSales(ctx, "admin", "", nil, nil, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items, "no se crea la venta")
}

func TestRecordSale_Validaciones(t *testing.T) {
	_, uc := newSalesFixture(t, 5)
	ctx := context.Background()

	mismatch := saleReq(2, 3500)
	mismatch.Payments[0].Amount = decimal.NewFromInt(6999)
	_, err := uc.RecordSale(ctx, "ana", "", mismatch)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "pagos no cuadran")

	withinTolerance := saleReq(1, 3500)
	withinTolerance.Payments[0].Amount = decimal.RequireFromString("3499.99")
	_, err = uc.RecordSale(ctx, "ana", "", withinTolerance)
	assert.NoError(t, err)

	// Postgres guarda dos decimales: una tercera cifra se rechaza en vez de redondearse.
	fractionalPayment := saleReq(1, 3500)
	fractionalPayment.Payments[0].Amount = decimal.RequireFromString("3499.995")
	_, err = uc.RecordSale(ctx, "ana", "", fractionalPayment)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "pago con tres decimales")

	fractionalPrice := saleReq(1, 3500)
	fractionalPrice.Price = decimal.RequireFromString("3500.005")
	_, err = uc.RecordSale(ctx, "ana", "", fractionalPrice)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "precio con tres decimales")

	trailingZeros := saleReq(1, 3500)
	trailingZeros.Price = decimal.RequireFromString("3500.000")
	_, err = uc.RecordSale(ctx, "ana", "", trailingZeros)
	assert.NoError(t, err, "ceros a la derecha no cuentan como decimales")

	badSize := saleReq(1, 3500)
	badSize.Size = "45"
	_, err = uc.RecordSale(ctx, "ana", "", badSize)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	noPayments := saleReq(1, 3500)
	noPayments.Payments = nil
	_, err = uc.RecordSale(ctx, "ana", "", noPayments)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RecordSale(ctx, "ben", "", saleReq(1, 3500))
	assert.ErrorIs(t, err, domain.ErrForbidden, "staff de otra duka")

	missing := saleReq(1, 3500)
	missing.ProductID = "nada"
	_, err = uc.RecordSale(ctx, "ana", "", missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordSale_ConcurrenteConStockUno(t *testing.T) {
	st, uc := newSalesFixture(t, 1)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.RecordSale(ctx, "ana", "", saleReq(1, 3500))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok, short := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
			short++
		}
	}
	assert.Equal(t, 1, ok, "exactamente una venta")
	assert.Equal(t, n-1, short)
	assert.Equal(t, 0, stockOf(t, st))
}

func TestRecordSale_IdempotencyKey(t *testing.T) {
	st, uc := newSalesFixture(t, 5)
	ctx := context.Background()

	first, err := uc.RecordSale(ctx, "ana", "pos-1-0001", saleReq(1, 3500))
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	again, err := uc.RecordSale(ctx, "ana", "pos-1-0001", saleReq(1, 3500))
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 4, stockOf(t, st), "el reenvío no descuenta otra vez")

	// Una venta fallida libera la clave.
	_, err = uc.RecordSale(ctx, "ana", "pos-1-0002", saleReq(9, 3500))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	_, err = uc.RecordSale(ctx, "ana", "pos-1-0002", saleReq(1, 3500))
	require.NoError(t, err)
	assert.Equal(t, 3, stockOf(t, st))
}

// ──────────────────────────────────────────────────────────────────────────────
// Devoluciones
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordReturn_RestauraStock(t *testing.T) {
	st, uc := newSalesFixture(t, 5)
	ctx := context.Background()

	sale, err := uc.RecordSale(ctx, "ana", "", saleReq(2, 3500))
	require.NoError(t, err)
	require.Equal(t, 3, stockOf(t, st))

	_, err = uc.RecordReturn(ctx, "ana", sale.ID, dto.RecordReturnRequest{Reason: "talla"})
	assert.ErrorIs(t, err, domain.ErrForbidden, "staff no devuelve ventas")
	_, err = uc.RecordReturn(ctx, "boss", sale.ID, dto.RecordReturnRequest{Reason: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	ret, err := uc.RecordReturn(ctx, "boss", sale.ID, dto.RecordReturnRequest{Reason: "talla equivocada"})
	require.NoError(t, err)
	assert.Equal(t, sale.ID, ret.SaleID)
	assert.Equal(t, 2, ret.Quantity)
	assert.True(t, ret.InventoryRestored)
	assert.Equal(t, 5, stockOf(t, st))

	_, err = uc.RecordReturn(ctx, "admin", sale.ID, dto.RecordReturnRequest{Reason: "otra vez"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 5, stockOf(t, st))

	returns, err := uc.ListReturns(ctx, "admin", "s1", nil, nil, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, returns.Items, 1)
}

func TestRecordReturn_ProductoEliminado(t *testing.T) {
	st, uc := newSalesFixture(t, 5)
	ctx := context.Background()

	sale, err := uc.RecordSale(ctx, "ana", "", saleReq(1, 3500))
	require.NoError(t, err)
	require.NoError(t, st.Items().Delete(ctx, "item-1"))

	ret, err := uc.RecordReturn(ctx, "admin", sale.ID, dto.RecordReturnRequest{Reason: "defecto"})
	require.NoError(t, err)
	assert.False(t, ret.InventoryRestored)
}

func TestListSales_RangoDeFechas(t *testing.T) {
	_, uc := newSalesFixture(t, 5)
	ctx := context.Background()

	_, err := uc.RecordSale(ctx, "ana", "", saleReq(1, 3500))
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	yesterday := time.Now().Add(-24 * time.Hour)
	list, err := uc.ListSales(ctx, "admin", "", &past, &yesterday, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	list, err = uc.ListSales(ctx, "ana", entity.StoreIDAll, &past, nil, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	_, err = uc.ListSales(ctx, "admin", "", &yesterday, &past, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
