package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const export = `[
	{"_id": "a1", "storeId": "duka-1", "@No": "A12", "name": "Air Max", "brand": "NIKE",
	 "sizes": "38, 39,40", "colors": ["Black", "White"], "price": "3500", "stock": "10", "incompletePairs": 1},
	{"_id": "a2", "storeId": "duka-1", "atNo": "B7", "name": "Samba", "sizes": [41, 42],
	 "colors": "Blue", "price": 2800.5, "stock": 4.0, "incompletePairs": null},
	{"_id": "a3", "@No": "C1", "stock": "muchos"}
]`

func TestDecodeLegacy(t *testing.T) {
	items, rejected, err := decodeLegacy(strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Len(t, rejected, 1)
	assert.Contains(t, rejected[0], "#2")

	first := items[0].request("")
	assert.Equal(t, "duka-1", first.StoreID)
	assert.Equal(t, "A12", first.AtNo)
	assert.Equal(t, 10, first.Stock)
	assert.Equal(t, 1, first.IncompletePairs)
	assert.True(t, decimal.NewFromInt(3500).Equal(first.Price))
	assert.Len(t, first.Sizes, 3)

	second := items[1].request("duka-9")
	assert.Equal(t, "duka-9", second.StoreID, "-store sobreescribe storeId")
	assert.Equal(t, "B7", second.AtNo)
	assert.Equal(t, []string{"41", "42"}, []string(second.Sizes))
	assert.Equal(t, 4, second.Stock)
	assert.Zero(t, second.IncompletePairs)
}

func TestDecodeLegacy_ExportInvalido(t *testing.T) {
	_, _, err := decodeLegacy(strings.NewReader(`{"no": "es arreglo"}`))
	assert.Error(t, err)
}

func TestCharsetReader_Windows1252(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String(`[{"name": "Zapato niño", "sizes": "30", "colors": "Café"}]`)
	require.NoError(t, err)

	r, err := charsetReader("windows-1252", bytes.NewReader([]byte(encoded)))
	require.NoError(t, err)
	items, rejected, err := decodeLegacy(r)
	require.NoError(t, err)
	assert.Empty(t, rejected)
	require.Len(t, items, 1)
	assert.Equal(t, "Zapato niño", items[0].Name)
	assert.Equal(t, []string{"Café"}, []string(items[0].Colors))
}

func TestCharsetReader(t *testing.T) {
	r, err := charsetReader("", strings.NewReader("x"))
	require.NoError(t, err)
	b, _ := io.ReadAll(r)
	assert.Equal(t, "x", string(b))

	_, err = charsetReader("ebcdic", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestFlexInt_RechazaDecimales(t *testing.T) {
	var n flexInt
	assert.Error(t, n.UnmarshalJSON([]byte(`"2.5"`)))
	require.NoError(t, n.UnmarshalJSON([]byte(`" 7 "`)))
	assert.Equal(t, flexInt(7), n)
}
