package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment parte del pago de una venta (efectivo, mpesa, tarjeta...).
type Payment struct {
	Method    string
	Amount    decimal.Decimal
	Reference string
}

// Sale venta en punto de venta. Inmutable una vez creada.
type Sale struct {
	ID             string
	BusinessID     string
	ProductID      string
	StoreID        string
	Size           string
	Quantity       int
	Price          decimal.Decimal // precio unitario cobrado
	OriginalPrice  decimal.Decimal // precio de lista al momento de la venta
	IsHaggled      bool
	DiscountAmount decimal.Decimal
	Payments       []Payment
	Total          decimal.Decimal
	CustomerName   string
	CustomerPhone  string
	SoldBy         string
	Timestamp      time.Time
}
