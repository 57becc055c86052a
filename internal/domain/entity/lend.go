package entity

import "time"

// Tipos de préstamo entre dukas.
const (
	LendTypePair   = "pair"
	LendTypeSingle = "single"
)

// Estados del préstamo. Returned y Updated son terminales.
const (
	LendStatusLent     = "lent"
	LendStatusReturned = "returned"
	LendStatusUpdated  = "updated"
)

// Efecto en origen de prestar un zapato suelto; se guarda para aplicar la inversa exacta al devolver.
const (
	SingleEffectOpened   = "opened"   // se abrió un par completo: incompletePairs += 1
	SingleEffectConsumed = "consumed" // se terminó un par incompleto: stock -= 1, incompletePairs -= 1
)

// Lend registro del libro lentshoes: traslado de inventario de una duka a otra.
type Lend struct {
	ID           string
	BusinessID   string
	ItemID       string // ítem en la duka origen
	DestItemID   string // ítem en la duka destino (creado o incrementado al prestar)
	FromStoreID  string
	ToStoreID    string
	FromStaffID  string
	ToStaffID    string
	LendType     string // pair | single
	Quantity     int    // pares; 1 para single
	SingleEffect string // solo para single
	Status       string
	ItemDetails  ItemSnapshot
	LentBy       string
	LentDate     time.Time
	ReturnDate   *time.Time
	ProcessedAt  *time.Time
	ProcessedBy  string
}

// IsTerminal informa si el préstamo ya no admite transiciones.
func (l *Lend) IsTerminal() bool {
	return l.Status == LendStatusReturned || l.Status == LendStatusUpdated
}
