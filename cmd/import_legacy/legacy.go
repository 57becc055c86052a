package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/dukastock-api/internal/application/dto"
)

// legacyItem documento de la colección inventory exportada del sistema anterior.
// Tallas y colores pueden venir como texto "38, 39" y los números como texto.
type legacyItem struct {
	ID              string          `json:"_id"`
	StoreID         string          `json:"storeId"`
	AtNo            string          `json:"@No"`
	AtNoAlt         string          `json:"atNo"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand"`
	Category        string          `json:"category"`
	AgeGroup        string          `json:"ageGroup"`
	Gender          string          `json:"gender"`
	Sizes           dto.LabelList   `json:"sizes"`
	Colors          dto.LabelList   `json:"colors"`
	Price           decimal.Decimal `json:"price"`
	Stock           flexInt         `json:"stock"`
	IncompletePairs flexInt         `json:"incompletePairs"`
	Notes           string          `json:"notes"`
}

// flexInt acepta 12, "12", 12.0 y null.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("número inválido %q", s)
	}
	if f != float64(int(f)) {
		return fmt.Errorf("se esperaba entero, llegó %q", s)
	}
	*n = flexInt(f)
	return nil
}

// request convierte el documento en el alta equivalente. store sobreescribe storeId.
func (l legacyItem) request(store string) dto.CreateItemRequest {
	atNo := l.AtNo
	if atNo == "" {
		atNo = l.AtNoAlt
	}
	if store == "" {
		store = l.StoreID
	}
	return dto.CreateItemRequest{
		StoreID:         store,
		AtNo:            atNo,
		Name:            l.Name,
		Brand:           l.Brand,
		Category:        l.Category,
		AgeGroup:        l.AgeGroup,
		Gender:          l.Gender,
		Sizes:           l.Sizes,
		Colors:          l.Colors,
		Price:           l.Price,
		Stock:           int(l.Stock),
		IncompletePairs: int(l.IncompletePairs),
		Notes:           l.Notes,
	}
}

// charsetReader envuelve r con el decodificador del charset pedido.
func charsetReader(charset string, r io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("charset no soportado: %s", charset)
	}
}

// decodeLegacy lee un arreglo JSON de documentos. Los que no decodifican se devuelven
// en rejected con su posición; el resto sigue.
func decodeLegacy(r io.Reader) (items []legacyItem, rejected []string, err error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("decodificar export: %w", err)
	}
	for i, doc := range raw {
		var it legacyItem
		if err := json.Unmarshal(doc, &it); err != nil {
			rejected = append(rejected, fmt.Sprintf("#%d: %v", i, err))
			continue
		}
		items = append(items, it)
	}
	return items, rejected, nil
}
