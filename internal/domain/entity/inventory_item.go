package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem es una línea de inventario: una variante de producto (@No) en una duka.
// Stock cuenta pares (incluidos los incompletos); IncompletePairs son pares a los que les falta un zapato.
type InventoryItem struct {
	ID              string
	BusinessID      string
	StoreID         string
	AtNo            string // código del negocio; único por (AtNo, StoreID)
	Name            string
	Brand           string
	Category        string
	AgeGroup        string
	Gender          string
	Sizes           []string // orden de captura preservado
	Colors          []string
	Price           decimal.Decimal
	Stock           int
	IncompletePairs int
	Notes           string // qué zapatos faltan en los pares incompletos
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ItemSnapshot copia de los atributos de un ítem al momento de prestarlo (para historial).
type ItemSnapshot struct {
	AtNo     string
	Name     string
	Brand    string
	Category string
	Sizes    []string
	Colors   []string
	Price    decimal.Decimal
}

// Snapshot devuelve la copia de atributos del ítem.
func (i *InventoryItem) Snapshot() ItemSnapshot {
	return ItemSnapshot{
		AtNo:     i.AtNo,
		Name:     i.Name,
		Brand:    i.Brand,
		Category: i.Category,
		Sizes:    append([]string(nil), i.Sizes...),
		Colors:   append([]string(nil), i.Colors...),
		Price:    i.Price,
	}
}
