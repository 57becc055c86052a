package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentDTO parte del pago de una venta.
type PaymentDTO struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// RecordSaleRequest body para POST /api/sales.
type RecordSaleRequest struct {
	ProductID     string          `json:"product_id"`
	Size          string          `json:"size"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"` // precio unitario cobrado (puede ser regateado)
	Payments      []PaymentDTO    `json:"payments"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	StoreID        string          `json:"store_id"`
	Size           string          `json:"size"`
	Quantity       int             `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	OriginalPrice  decimal.Decimal `json:"original_price"`
	IsHaggled      bool            `json:"is_haggled"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Payments       []PaymentDTO    `json:"payments"`
	Total          decimal.Decimal `json:"total"`
	CustomerName   string          `json:"customer_name,omitempty"`
	CustomerPhone  string          `json:"customer_phone,omitempty"`
	SoldBy         string          `json:"sold_by"`
	Timestamp      time.Time       `json:"timestamp"`
	Replayed       bool            `json:"replayed,omitempty"` // respuesta repetida por Idempotency-Key
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// RecordReturnRequest body para POST /api/sales/:id/return.
type RecordReturnRequest struct {
	Reason string `json:"reason"`
}

// ReturnResponse salida de una devolución.
type ReturnResponse struct {
	ID                string          `json:"id"`
	SaleID            string          `json:"sale_id"`
	ProductID         string          `json:"product_id"`
	StoreID           string          `json:"store_id"`
	Size              string          `json:"size"`
	Quantity          int             `json:"quantity"`
	Price             decimal.Decimal `json:"price"`
	Total             decimal.Decimal `json:"total"`
	ReturnReason      string          `json:"return_reason"`
	InventoryRestored bool            `json:"inventory_restored"`
	ProcessedBy       string          `json:"processed_by"`
	Timestamp         time.Time       `json:"timestamp"`
}

// ReturnListResponse lista paginada de devoluciones.
type ReturnListResponse struct {
	Items []ReturnResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
