package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LabelList acepta tallas/colores como arreglo JSON o como texto separado por comas ("38, 39, 40").
// Los números se aceptan y se guardan como texto.
type LabelList []string

// UnmarshalJSON implementa json.Unmarshaler.
func (l *LabelList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = strings.Split(s, ",")
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var str string
		if err := json.Unmarshal(r, &str); err == nil {
			out = append(out, str)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(r, &n); err != nil {
			return err
		}
		out = append(out, n.String())
	}
	*l = out
	return nil
}

// CreateItemRequest body para POST /api/inventory.
type CreateItemRequest struct {
	StoreID         string          `json:"store_id"`
	AtNo            string          `json:"at_no"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand"`
	Category        string          `json:"category"`
	AgeGroup        string          `json:"age_group"`
	Gender          string          `json:"gender"`
	Sizes           LabelList       `json:"sizes"`
	Colors          LabelList       `json:"colors"`
	Price           decimal.Decimal `json:"price"`
	Stock           int             `json:"stock"`
	IncompletePairs int             `json:"incomplete_pairs"`
	Notes           string          `json:"notes"`
}

// UpdateItemRequest body para PUT /api/inventory/:id (edición manual; campos nil no cambian).
type UpdateItemRequest struct {
	Name            *string          `json:"name"`
	Brand           *string          `json:"brand"`
	Category        *string          `json:"category"`
	AgeGroup        *string          `json:"age_group"`
	Gender          *string          `json:"gender"`
	Sizes           *LabelList       `json:"sizes"`
	Colors          *LabelList       `json:"colors"`
	Price           *decimal.Decimal `json:"price"`
	Stock           *int             `json:"stock"`
	IncompletePairs *int             `json:"incomplete_pairs"`
	Notes           *string          `json:"notes"`
}

// ItemResponse salida de una línea de inventario con los derivados de pares.
type ItemResponse struct {
	ID              string          `json:"id"`
	StoreID         string          `json:"store_id"`
	AtNo            string          `json:"at_no"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand"`
	Category        string          `json:"category"`
	AgeGroup        string          `json:"age_group"`
	Gender          string          `json:"gender"`
	Sizes           []string        `json:"sizes"`
	Colors          []string        `json:"colors"`
	Price           decimal.Decimal `json:"price"`
	Stock           int             `json:"stock"`
	IncompletePairs int             `json:"incomplete_pairs"`
	CompletePairs   int             `json:"complete_pairs"`
	TotalShoes      int             `json:"total_shoes"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ItemListResponse lista paginada de inventario.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// StoreStockSummary totales de una duka.
type StoreStockSummary struct {
	StoreID         string          `json:"store_id"`
	Items           int             `json:"items"`
	Stock           int             `json:"stock"`
	CompletePairs   int             `json:"complete_pairs"`
	IncompletePairs int             `json:"incomplete_pairs"`
	TotalShoes      int             `json:"total_shoes"`
	StockValue      decimal.Decimal `json:"stock_value"` // precio * pares completos
}

// StockSummaryResponse resumen por duka y total del negocio.
type StockSummaryResponse struct {
	Stores []StoreStockSummary `json:"stores"`
	Total  StoreStockSummary   `json:"total"`
}

// AuditReport resultado de la auditoría de consistencia.
type AuditReport struct {
	ItemsScanned int       `json:"items_scanned"`
	Violations   []string  `json:"violations"` // IDs de ítems con 0 <= incompletos <= stock roto
	OpenLends    int       `json:"open_lends"`
	OverdueLends []string  `json:"overdue_lends"`
	GeneratedAt  time.Time `json:"generated_at"`
}
