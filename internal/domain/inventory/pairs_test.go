package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Préstamo de un zapato suelto
// ──────────────────────────────────────────────────────────────────────────────

func TestLendFromSource_SueltoAbreUnPar(t *testing.T) {
	next, effect, err := inventory.LendFromSource(inventory.PairState{Stock: 10}, entity.LendTypeSingle, 1)
	require.NoError(t, err)
	assert.Equal(t, inventory.PairState{Stock: 10, IncompletePairs: 1}, next)
	assert.Equal(t, entity.SingleEffectOpened, effect)
}

func TestLendFromSource_SueltoTerminaParIncompleto(t *testing.T) {
	next, effect, err := inventory.LendFromSource(inventory.PairState{Stock: 10, IncompletePairs: 1}, entity.LendTypeSingle, 1)
	require.NoError(t, err)
	assert.Equal(t, inventory.PairState{Stock: 9, IncompletePairs: 0}, next)
	assert.Equal(t, entity.SingleEffectConsumed, effect)
}

func TestLendFromSource_SueltoSinStock(t *testing.T) {
	_, _, err := inventory.LendFromSource(inventory.PairState{}, entity.LendTypeSingle, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestLendFromSource_SueltoConCantidadDistintaDeUno(t *testing.T) {
	_, _, err := inventory.LendFromSource(inventory.PairState{Stock: 3}, entity.LendTypeSingle, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Préstamo de pares
// ──────────────────────────────────────────────────────────────────────────────

func TestLendFromSource_Pares(t *testing.T) {
	next, effect, err := inventory.LendFromSource(inventory.PairState{Stock: 5}, entity.LendTypePair, 2)
	require.NoError(t, err)
	assert.Equal(t, inventory.PairState{Stock: 3}, next)
	assert.Empty(t, effect)

	dest, err := inventory.ReceiveAtDestination(inventory.PairState{}, entity.LendTypePair, 2)
	require.NoError(t, err)
	assert.Equal(t, inventory.PairState{Stock: 2}, dest)
}

func TestLendFromSource_ParesSoloCuentaParesCompletos(t *testing.T) {
	// 3 pares, 2 incompletos: solo 1 par completo disponible.
	_, _, err := inventory.LendFromSource(inventory.PairState{Stock: 3, IncompletePairs: 2}, entity.LendTypePair, 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestLendFromSource_EstadoInvalidoSeRechaza(t *testing.T) {
	_, _, err := inventory.LendFromSource(inventory.PairState{Stock: 1, IncompletePairs: 2}, entity.LendTypePair, 1)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestLendFromSource_TipoDesconocido(t *testing.T) {
	_, _, err := inventory.LendFromSource(inventory.PairState{Stock: 1}, "box", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReceiveAtDestination_SueltoEsParIncompletoNuevo(t *testing.T) {
	dest, err := inventory.ReceiveAtDestination(inventory.PairState{Stock: 4, IncompletePairs: 1}, entity.LendTypeSingle, 1)
	require.NoError(t, err)
	assert.Equal(t, inventory.PairState{Stock: 5, IncompletePairs: 2}, dest)
}

// ──────────────────────────────────────────────────────────────────────────────
// Conservación: préstamo + devolución deja el origen como estaba
// ──────────────────────────────────────────────────────────────────────────────

func TestIdaYVuelta_RestauraOrigenYDestino(t *testing.T) {
	cases := []struct {
		name     string
		source   inventory.PairState
		dest     inventory.PairState
		lendType string
		qty      int
	}{
		{"pares", inventory.PairState{Stock: 5}, inventory.PairState{}, entity.LendTypePair, 2},
		{"suelto abre par", inventory.PairState{Stock: 10}, inventory.PairState{Stock: 1}, entity.LendTypeSingle, 1},
		{"suelto consume par", inventory.PairState{Stock: 10, IncompletePairs: 1}, inventory.PairState{}, entity.LendTypeSingle, 1},
		{"pares con incompletos", inventory.PairState{Stock: 8, IncompletePairs: 3}, inventory.PairState{Stock: 2, IncompletePairs: 2}, entity.LendTypePair, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shoesBefore := tc.source.TotalShoes() + tc.dest.TotalShoes()

			src, effect, err := inventory.LendFromSource(tc.source, tc.lendType, tc.qty)
			require.NoError(t, err)
			dst, err := inventory.ReceiveAtDestination(tc.dest, tc.lendType, tc.qty)
			require.NoError(t, err)
			assert.Equal(t, shoesBefore, src.TotalShoes()+dst.TotalShoes(), "el préstamo conserva el total de zapatos")

			src, err = inventory.ReturnToSource(src, tc.lendType, tc.qty, effect)
			require.NoError(t, err)
			dst, err = inventory.TakeBackFromDestination(dst, tc.lendType, tc.qty)
			require.NoError(t, err)

			assert.Equal(t, tc.source, src)
			assert.Equal(t, tc.dest, dst)
		})
	}
}

func TestTakeBackFromDestination_AcotaYDetectaViolacion(t *testing.T) {
	// El destino vendió uno de los pares prestados: stock se acota en cero,
	// pero los incompletos ya no caben y la devolución debe abortar.
	_, err := inventory.TakeBackFromDestination(inventory.PairState{Stock: 1, IncompletePairs: 1}, entity.LendTypePair, 2)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)

	next, err := inventory.TakeBackFromDestination(inventory.PairState{Stock: 1}, entity.LendTypePair, 2)
	require.NoError(t, err)
	assert.Equal(t, inventory.PairState{}, next)
}

func TestReturnToSource_EfectoDesconocido(t *testing.T) {
	_, err := inventory.ReturnToSource(inventory.PairState{Stock: 1}, entity.LendTypeSingle, 1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestSell(t *testing.T) {
	next, err := inventory.Sell(inventory.PairState{Stock: 5, IncompletePairs: 1}, 3)
	require.NoError(t, err)
	assert.Equal(t, inventory.PairState{Stock: 2, IncompletePairs: 1}, next)

	_, err = inventory.Sell(inventory.PairState{Stock: 2}, 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = inventory.Sell(inventory.PairState{Stock: 2, IncompletePairs: 2}, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "un par incompleto no se vende como par")

	_, err = inventory.Sell(inventory.PairState{Stock: 2}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRestoreSale(t *testing.T) {
	next, err := inventory.RestoreSale(inventory.PairState{Stock: 1, IncompletePairs: 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, inventory.PairState{Stock: 3, IncompletePairs: 1}, next)
}

// ──────────────────────────────────────────────────────────────────────────────
// Modelo del registro
// ──────────────────────────────────────────────────────────────────────────────

func validItem() *entity.InventoryItem {
	return &entity.InventoryItem{
		StoreID: "duka-1", AtNo: "A12", Name: "Air Max",
		Sizes: []string{"40", "41"}, Colors: []string{"Black"},
		Price: decimal.NewFromInt(3500), Stock: 4, IncompletePairs: 1,
	}
}

func TestValidateItem(t *testing.T) {
	require.NoError(t, inventory.ValidateItem(validItem()))

	mutations := map[string]func(*entity.InventoryItem){
		"incompletos mayor que stock": func(i *entity.InventoryItem) { i.IncompletePairs = 5 },
		"stock negativo":              func(i *entity.InventoryItem) { i.Stock = -1; i.IncompletePairs = 0 },
		"sin tallas":                  func(i *entity.InventoryItem) { i.Sizes = inventory.ParseLabels(" , ,") },
		"sin colores":                 func(i *entity.InventoryItem) { i.Colors = nil },
		"store all":                   func(i *entity.InventoryItem) { i.StoreID = entity.StoreIDAll },
		"precio negativo":             func(i *entity.InventoryItem) { i.Price = decimal.NewFromInt(-1) },
		"precio con tres decimales":   func(i *entity.InventoryItem) { i.Price = decimal.RequireFromString("10.005") },
		"sin @No":                     func(i *entity.InventoryItem) { i.AtNo = "  " },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			item := validItem()
			mutate(item)
			assert.ErrorIs(t, inventory.ValidateItem(item), domain.ErrInvalidInput)
		})
	}
}

func TestFitsMoneyScale(t *testing.T) {
	assert.True(t, inventory.FitsMoneyScale(decimal.RequireFromString("3499.99")))
	assert.True(t, inventory.FitsMoneyScale(decimal.RequireFromString("10.500")))
	assert.False(t, inventory.FitsMoneyScale(decimal.RequireFromString("0.001")))
}

func TestCompletePairsYTotalShoes(t *testing.T) {
	item := validItem()
	assert.Equal(t, 3, inventory.CompletePairs(item))
	assert.Equal(t, 7, inventory.TotalShoes(item))
}

func TestParseLabels(t *testing.T) {
	assert.Equal(t, []string{"38", "39", "40"}, inventory.ParseLabels("38, 39,40 ,39,"))
	assert.Empty(t, inventory.ParseLabels(""))
}
