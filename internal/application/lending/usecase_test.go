package lending_test

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
	"github.com/jhoicas/dukastock-api/internal/application/lending"
	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/inventory"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
	"github.com/jhoicas/dukastock-api/internal/infrastructure/memory"
)

type fixture struct {
	st *memory.Store
	uc *lending.UseCase
}

// newFixture: negocio b1 con dukas s1 y s2, un admin, un staff por duka y un staff de otro negocio.
func newFixture(t *testing.T, stock, incomplete int) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.Businesses().Create(ctx, &entity.Business{ID: "b1", Name: "Duka Shoes"}))
	require.NoError(t, st.Stores().Create(ctx, &entity.Store{ID: "s1", BusinessID: "b1", Name: "Gikomba"}))
	require.NoError(t, st.Stores().Create(ctx, &entity.Store{ID: "s2", BusinessID: "b1", Name: "Toi"}))
	for _, u := range []*entity.User{
		{ID: "admin", BusinessID: "b1", Email: "admin@duka.test", Role: entity.RoleAdmin, Status: entity.UserStatusActive},
		{ID: "ana", BusinessID: "b1", StoreID: "s1", Email: "ana@duka.test", Role: entity.RoleStaff, Status: entity.UserStatusActive},
		{ID: "ben", BusinessID: "b1", StoreID: "s2", Email: "ben@duka.test", Role: entity.RoleStaff, Status: entity.UserStatusActive},
		{ID: "boss2", BusinessID: "b1", StoreID: "s2", Email: "boss2@duka.test", Role: entity.RoleStaffAdmin, Status: entity.UserStatusActive},
		{ID: "ajeno", BusinessID: "b9", StoreID: "x1", Email: "x@otro.test", Role: entity.RoleStaff, Status: entity.UserStatusActive},
	} {
		require.NoError(t, st.Users().Create(ctx, u))
	}
	require.NoError(t, st.Items().Create(ctx, &entity.InventoryItem{
		ID: "item-1", BusinessID: "b1", StoreID: "s1", AtNo: "A12", Name: "Air Max",
		Sizes: []string{"40", "41"}, Colors: []string{"Black"},
		Price: decimal.NewFromInt(3500), Stock: stock, IncompletePairs: incomplete,
	}))
	uc := lending.NewUseCase(access.NewGuard(st.Users()), st, st.Items(), st.Lends(), st.Stores(), st.Users(), nil)
	return &fixture{st: st, uc: uc}
}

func (f *fixture) item(t *testing.T, id string) *entity.InventoryItem {
	t.Helper()
	item, err := f.st.Items().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item
}

func (f *fixture) countItems(t *testing.T) int {
	t.Helper()
	list, err := f.st.Items().List(context.Background(), repository.ItemFilter{})
	require.NoError(t, err)
	return len(list)
}

func lendReq(lendType string, qty int) dto.CreateLendRequest {
	return dto.CreateLendRequest{
		ItemID: "item-1", FromStoreID: "s1", ToStoreID: "s2",
		FromStaffID: "ana", ToStaffID: "ben", LendType: lendType, Quantity: qty,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios de préstamo
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_SueltoAbreParEnOrigen(t *testing.T) {
	f := newFixture(t, 10, 0)
	ctx := context.Background()

	lend, err := f.uc.Create(ctx, "ana", lendReq(entity.LendTypeSingle, 0))
	require.NoError(t, err)
	assert.Equal(t, entity.LendStatusLent, lend.Status)
	assert.Equal(t, 1, lend.Quantity)

	src := f.item(t, "item-1")
	assert.Equal(t, 10, src.Stock)
	assert.Equal(t, 1, src.IncompletePairs)

	dst := f.item(t, lend.DestItemID)
	assert.Equal(t, "s2", dst.StoreID)
	assert.Equal(t, "A12", dst.AtNo)
	assert.Equal(t, 1, dst.Stock)
	assert.Equal(t, 1, dst.IncompletePairs)
}

func TestCreate_SueltoTerminaParIncompleto(t *testing.T) {
	f := newFixture(t, 10, 1)

	_, err := f.uc.Create(context.Background(), "ana", lendReq(entity.LendTypeSingle, 1))
	require.NoError(t, err)

	src := f.item(t, "item-1")
	assert.Equal(t, 9, src.Stock)
	assert.Equal(t, 0, src.IncompletePairs)
}

func TestCreate_ParesCreaDestino(t *testing.T) {
	f := newFixture(t, 5, 0)
	ctx := context.Background()

	lend, err := f.uc.Create(ctx, "ana", lendReq(entity.LendTypePair, 2))
	require.NoError(t, err)

	src := f.item(t, "item-1")
	assert.Equal(t, 3, src.Stock)
	assert.Equal(t, 0, src.IncompletePairs)

	dst := f.item(t, lend.DestItemID)
	assert.Equal(t, 2, dst.Stock)
	assert.Equal(t, 0, dst.IncompletePairs)
	assert.Equal(t, []string{"40", "41"}, dst.Sizes)
	assert.Equal(t, "A12", lend.ItemDetails.AtNo)

	// Segundo préstamo incrementa la misma línea destino.
	again, err := f.uc.Create(ctx, "ana", lendReq(entity.LendTypePair, 1))
	require.NoError(t, err)
	assert.Equal(t, lend.DestItemID, again.DestItemID)
	assert.Equal(t, 3, f.item(t, lend.DestItemID).Stock)
	assert.Equal(t, 2, f.countItems(t))
}

func TestCreate_StockInsuficienteNoEscribeNada(t *testing.T) {
	f := newFixture(t, 3, 2)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, "ana", lendReq(entity.LendTypePair, 2))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	src := f.item(t, "item-1")
	assert.Equal(t, 3, src.Stock)
	assert.Equal(t, 2, src.IncompletePairs)
	assert.Equal(t, 1, f.countItems(t), "no se crea línea destino")

	lends, err := f.uc.List(ctx, "admin", "", "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, lends.Items)
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t, 5, 0)
	ctx := context.Background()

	cases := map[string]struct {
		user string
		req  func() dto.CreateLendRequest
		want error
	}{
		"misma duka": {"ana", func() dto.CreateLendRequest {
			r := lendReq(entity.LendTypePair, 1)
			r.ToStoreID = "s1"
			return r
		}, domain.ErrInvalidInput},
		"suelto con cantidad 2": {"ana", func() dto.CreateLendRequest { return lendReq(entity.LendTypeSingle, 2) }, domain.ErrInvalidInput},
		"tipo desconocido":      {"ana", func() dto.CreateLendRequest { return lendReq("box", 1) }, domain.ErrInvalidInput},
		"sin staff destino": {"ana", func() dto.CreateLendRequest {
			r := lendReq(entity.LendTypePair, 1)
			r.ToStaffID = ""
			return r
		}, domain.ErrInvalidInput},
		"staff inexistente": {"ana", func() dto.CreateLendRequest {
			r := lendReq(entity.LendTypePair, 1)
			r.ToStaffID = "fantasma"
			return r
		}, domain.ErrNotFound},
		"duka destino de otro negocio": {"ana", func() dto.CreateLendRequest {
			r := lendReq(entity.LendTypePair, 1)
			r.ToStoreID = "x1"
			return r
		}, domain.ErrNotFound},
		"origen distinto al del ítem": {"admin", func() dto.CreateLendRequest {
			r := lendReq(entity.LendTypePair, 1)
			r.FromStoreID, r.ToStoreID = "s2", "s1"
			return r
		}, domain.ErrInvalidInput},
		"staff de otra duka":      {"ben", func() dto.CreateLendRequest { return lendReq(entity.LendTypePair, 1) }, domain.ErrForbidden},
		"usuario de otro negocio": {"ajeno", func() dto.CreateLendRequest { return lendReq(entity.LendTypePair, 1) }, domain.ErrNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.Create(ctx, tc.user, tc.req())
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, 5, f.item(t, "item-1").Stock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func (f *fixture) shoes(t *testing.T) (total int, all []*entity.InventoryItem) {
	t.Helper()
	all, err := f.st.Items().List(context.Background(), repository.ItemFilter{StoreID: entity.StoreIDAll})
	require.NoError(t, err)
	for _, item := range all {
		total += inventory.TotalShoes(item)
		assert.GreaterOrEqual(t, item.IncompletePairs, 0, "ítem %s", item.ID)
		assert.LessOrEqual(t, item.IncompletePairs, item.Stock, "ítem %s", item.ID)
	}
	return total, all
}

func (f *fixture) ledger(t *testing.T) []*entity.Lend {
	t.Helper()
	lends, err := f.st.Lends().List(context.Background(), repository.LendFilter{})
	require.NoError(t, err)
	return lends
}

// waitAll falla si los préstamos concurrentes no terminan (bloqueo mutuo).
func waitAll(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("préstamos concurrentes bloqueados")
	}
}

func TestCreate_ConcurrenteConservaZapatos(t *testing.T) {
	f := newFixture(t, 3, 0)
	ctx := context.Background()
	before, _ := f.shoes(t)

	const n = 12
	var wg sync.WaitGroup
	type result struct {
		lendType string
		err      error
	}
	results := make(chan result, n)
	for i := range n {
		lendType := entity.LendTypePair
		if i%2 == 1 {
			lendType = entity.LendTypeSingle
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Create(ctx, "ana", lendReq(lendType, 1))
			results <- result{lendType, err}
		}()
	}
	waitAll(t, &wg)
	close(results)

	ok, short, moved := 0, 0, 0
	for r := range results {
		switch {
		case r.err == nil:
			ok++
			if r.lendType == entity.LendTypePair {
				moved += 2
			} else {
				moved++
			}
		case assert.ErrorIs(t, r.err, domain.ErrInsufficientStock):
			short++
		}
	}
	assert.Positive(t, ok)
	assert.Positive(t, short, "6 zapatos no cubren 18 pedidos")
	assert.Len(t, f.ledger(t), ok, "un registro por préstamo confirmado")

	after, all := f.shoes(t)
	assert.Equal(t, before, after, "el total de zapatos se conserva")
	require.Len(t, all, 2, "una sola línea destino")
	src := f.item(t, "item-1")
	assert.Equal(t, before-moved, inventory.TotalShoes(src))
}

func TestCreate_ConcurrenteCruzado(t *testing.T) {
	f := newFixture(t, 5, 0)
	ctx := context.Background()
	require.NoError(t, f.st.Items().Create(ctx, &entity.InventoryItem{
		ID: "item-2", BusinessID: "b1", StoreID: "s2", AtNo: "A12", Name: "Air Max",
		Sizes: []string{"40", "41"}, Price: decimal.NewFromInt(3500), Stock: 4,
	}))
	before, _ := f.shoes(t)

	toS2 := lendReq(entity.LendTypePair, 1)
	toS1 := dto.CreateLendRequest{
		ItemID: "item-2", FromStoreID: "s2", ToStoreID: "s1",
		FromStaffID: "ben", ToStaffID: "ana", LendType: entity.LendTypePair, Quantity: 1,
	}

	const rounds = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	okS2, okS1 := 0, 0
	for range rounds {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.uc.Create(ctx, "ana", toS2)
			if err == nil {
				mu.Lock()
				okS2++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}()
		go func() {
			defer wg.Done()
			_, err := f.uc.Create(ctx, "ben", toS1)
			if err == nil {
				mu.Lock()
				okS1++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}()
	}
	waitAll(t, &wg)

	after, all := f.shoes(t)
	assert.Equal(t, before, after, "el total de zapatos se conserva")
	assert.Len(t, all, 2, "cada dirección incrementa la línea existente")
	assert.Len(t, f.ledger(t), okS2+okS1)
	assert.Equal(t, 5-okS2+okS1, f.item(t, "item-1").Stock)
	assert.Equal(t, 4-okS1+okS2, f.item(t, "item-2").Stock)
}

// hiddenDest simula una lectura anterior a que otra transacción cree la línea destino.
type hiddenDest struct {
	repository.InventoryItemRepository
}

func (hiddenDest) GetByStoreAndAtNoForUpdate(context.Context, string, string) (*entity.InventoryItem, error) {
	return nil, nil
}

type staleDestRunner struct {
	st    *memory.Store
	stale int
	calls int
}

func (r *staleDestRunner) RunLending(ctx context.Context, fn func(repository.InventoryItemRepository, repository.LendRepository) error) error {
	r.calls++
	hide := r.calls <= r.stale
	return r.st.RunLending(ctx, func(items repository.InventoryItemRepository, lends repository.LendRepository) error {
		if hide {
			items = hiddenDest{items}
		}
		return fn(items, lends)
	})
}

func TestCreate_DestinoCreadoEnParaleloSeReintenta(t *testing.T) {
	f := newFixture(t, 5, 0)
	ctx := context.Background()
	require.NoError(t, f.st.Items().Create(ctx, &entity.InventoryItem{
		ID: "dest-1", BusinessID: "b1", StoreID: "s2", AtNo: "A12", Name: "Air Max", Stock: 1,
	}))

	newUC := func(r *staleDestRunner) *lending.UseCase {
		return lending.NewUseCase(access.NewGuard(f.st.Users()), r, f.st.Items(), f.st.Lends(), f.st.Stores(), f.st.Users(), nil)
	}

	runner := &staleDestRunner{st: f.st, stale: 1}
	lend, err := newUC(runner).Create(ctx, "ana", lendReq(entity.LendTypePair, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, runner.calls)
	assert.Equal(t, "dest-1", lend.DestItemID)
	assert.Equal(t, 3, f.item(t, "dest-1").Stock)
	assert.Equal(t, 3, f.item(t, "item-1").Stock)
	assert.Equal(t, 2, f.countItems(t))

	// Si el reintento también choca, el cliente recibe un conflicto y nada cambia.
	always := &staleDestRunner{st: f.st, stale: 99}
	_, err = newUC(always).Create(ctx, "ana", lendReq(entity.LendTypePair, 1))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 2, always.calls)
	assert.Equal(t, 3, f.item(t, "item-1").Stock)
	assert.Len(t, f.ledger(t), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Devolución y cierre
// ──────────────────────────────────────────────────────────────────────────────

func TestReturn_IdaYVueltaRestauraOrigen(t *testing.T) {
	for _, tc := range []struct {
		name       string
		stock, inc int
		lendType   string
		qty        int
	}{
		{"pares", 5, 0, entity.LendTypePair, 2},
		{"suelto abre par", 10, 0, entity.LendTypeSingle, 1},
		{"suelto consume par", 10, 1, entity.LendTypeSingle, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.stock, tc.inc)
			ctx := context.Background()

			lend, err := f.uc.Create(ctx, "ana", lendReq(tc.lendType, tc.qty))
			require.NoError(t, err)

			back, err := f.uc.Return(ctx, "ben", lend.ID)
			require.NoError(t, err)
			assert.Equal(t, entity.LendStatusReturned, back.Status)
			require.NotNil(t, back.ReturnDate)

			src := f.item(t, "item-1")
			assert.Equal(t, tc.stock, src.Stock)
			assert.Equal(t, tc.inc, src.IncompletePairs)
			dst := f.item(t, lend.DestItemID)
			assert.Equal(t, 0, dst.Stock)
			assert.Equal(t, 0, dst.IncompletePairs)

			_, err = f.uc.Return(ctx, "ben", lend.ID)
			assert.ErrorIs(t, err, domain.ErrTerminalState)
		})
	}
}

func TestReturn_DestinoEliminado(t *testing.T) {
	f := newFixture(t, 5, 0)
	ctx := context.Background()

	lend, err := f.uc.Create(ctx, "ana", lendReq(entity.LendTypePair, 2))
	require.NoError(t, err)
	require.NoError(t, f.st.Items().Delete(ctx, lend.DestItemID))

	_, err = f.uc.Return(ctx, "ana", lend.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 3, f.item(t, "item-1").Stock, "el origen no cambia si la devolución aborta")

	got, err := f.uc.Get(ctx, "ana", lend.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LendStatusLent, got.Status)
}

func TestMarkUpdated_EstadoTerminal(t *testing.T) {
	f := newFixture(t, 5, 0)
	ctx := context.Background()

	lend, err := f.uc.Create(ctx, "ana", lendReq(entity.LendTypePair, 1))
	require.NoError(t, err)

	// ana originó el préstamo pero no es la receptora ni administra.
	_, err = f.uc.MarkUpdated(ctx, "ana", lend.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	done, err := f.uc.MarkUpdated(ctx, "ben", lend.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LendStatusUpdated, done.Status)
	require.NotNil(t, done.ProcessedAt)
	assert.Equal(t, 4, f.item(t, "item-1").Stock, "marcar actualizado no toca inventario")

	_, err = f.uc.MarkUpdated(ctx, "boss2", lend.ID)
	assert.ErrorIs(t, err, domain.ErrTerminalState)
	_, err = f.uc.Return(ctx, "admin", lend.ID)
	assert.ErrorIs(t, err, domain.ErrTerminalState)
}

func TestList_StaffSoloVeSuDuka(t *testing.T) {
	f := newFixture(t, 5, 0)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, "ana", lendReq(entity.LendTypePair, 1))
	require.NoError(t, err)

	mine, err := f.uc.List(ctx, "ben", entity.StoreIDAll, "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, mine.Items, 1, "ben ve el préstamo que llega a s2")

	open, err := f.uc.List(ctx, "admin", "", entity.LendStatusReturned, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, open.Items)

	_, err = f.uc.List(ctx, "admin", "", "perdido", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
