package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleReturn devolución de una venta (0..1 por venta).
// InventoryRestored es false cuando el ítem original ya no existía y solo se dejó el registro de auditoría.
type SaleReturn struct {
	ID                string
	BusinessID        string
	SaleID            string
	ProductID         string
	StoreID           string
	Size              string
	Quantity          int
	Price             decimal.Decimal
	Total             decimal.Decimal
	ReturnReason      string
	InventoryRestored bool
	ProcessedBy       string
	Timestamp         time.Time
}
