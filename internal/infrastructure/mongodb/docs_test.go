package mongodb

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
)

func decodeItem(t *testing.T, raw bson.M) *entity.InventoryItem {
	t.Helper()
	data, err := bson.Marshal(raw)
	require.NoError(t, err)
	var d itemDoc
	require.NoError(t, bson.Unmarshal(data, &d))
	return d.entity()
}

func TestLabelList_DocumentosAntiguos(t *testing.T) {
	cases := []struct {
		name  string
		sizes any
		want  []string
	}{
		{"texto con comas", "38, 39,40 ,", []string{"38", "39", "40"}},
		{"arreglo de texto", bson.A{"S", " M ", "", "M"}, []string{"S", "M"}},
		{"arreglo de números", bson.A{int32(40), int64(41), 42.5}, []string{"40", "41", "42.5"}},
		{"número suelto", int32(38), []string{"38"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := decodeItem(t, bson.M{"_id": "i1", "sizes": tc.sizes, "colors": "Black", "price": 10.5})
			assert.Equal(t, tc.want, item.Sizes)
			assert.Equal(t, []string{"Black"}, item.Colors)
		})
	}
}

func TestLabelList_NuloQuedaVacio(t *testing.T) {
	item := decodeItem(t, bson.M{"_id": "i1", "sizes": nil, "colors": bson.A{}})
	assert.Empty(t, item.Sizes)
	assert.Empty(t, item.Colors)
}

func TestMoney_AceptaTiposAntiguos(t *testing.T) {
	for name, price := range map[string]any{
		"double": 3500.0,
		"int32":  int32(3500),
		"int64":  int64(3500),
		"texto":  "3500.00",
	} {
		t.Run(name, func(t *testing.T) {
			item := decodeItem(t, bson.M{"_id": "i1", "price": price})
			assert.True(t, decimal.NewFromInt(3500).Equal(item.Price), "precio %s", item.Price)
		})
	}
}

func TestItemDoc_IdaYVuelta(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	in := &entity.InventoryItem{
		ID: "i1", BusinessID: "b1", StoreID: "s1", AtNo: "A12", Name: "Air Max",
		Sizes: []string{"41", "40"}, Colors: []string{"Black"},
		Price: decimal.RequireFromString("3499.99"), Stock: 4, IncompletePairs: 1,
		CreatedAt: now, UpdatedAt: now,
	}
	data, err := bson.Marshal(toItemDoc(in))
	require.NoError(t, err)

	var raw bson.M
	require.NoError(t, bson.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "version")

	var d itemDoc
	require.NoError(t, bson.Unmarshal(data, &d))
	out := d.entity()
	assert.Equal(t, in.Sizes, out.Sizes, "el orden de captura se conserva")
	assert.True(t, in.Price.Equal(out.Price))
	assert.Equal(t, in.Stock, out.Stock)
	assert.Equal(t, in.IncompletePairs, out.IncompletePairs)
	assert.Equal(t, now, out.CreatedAt.UTC())
}

func TestMapErr_ConservaEtiquetaTransitoria(t *testing.T) {
	raw := mongo.CommandError{
		Code: 91, Message: "connection reset",
		Labels: []string{"NetworkError", "TransientTransactionError"},
	}
	require.True(t, isTransientTxn(raw))

	mapped := mapErr("lock inventory item", raw)
	assert.ErrorIs(t, mapped, domain.ErrTransient)
	assert.True(t, isTransientTxn(mapped), "la etiqueta sobrevive al mapeo")
	assert.True(t, mongo.IsNetworkError(mapped), "el driver también la encuentra")

	var ce mongo.CommandError
	require.True(t, errors.As(mapped, &ce))
	assert.Equal(t, int32(91), ce.Code)

	// Un error sin etiquetas no dispara reintentos.
	assert.False(t, isTransientTxn(mapErr("find item", errors.New("boom"))))
}
