package inventory

import (
	"fmt"

	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
)

// PairState es el par (Stock, IncompletePairs) de una línea de inventario.
// Todas las operaciones son puras: devuelven el estado nuevo o un error, nunca un estado parcial.
type PairState struct {
	Stock           int
	IncompletePairs int
}

// StateOf extrae el estado de pares de un ítem.
func StateOf(item *entity.InventoryItem) PairState {
	return PairState{Stock: item.Stock, IncompletePairs: item.IncompletePairs}
}

// Apply escribe el estado en el ítem.
func (s PairState) Apply(item *entity.InventoryItem) {
	item.Stock = s.Stock
	item.IncompletePairs = s.IncompletePairs
}

// CompletePairs = Stock - IncompletePairs.
func (s PairState) CompletePairs() int { return s.Stock - s.IncompletePairs }

// TotalShoes = CompletePairs*2 + IncompletePairs.
func (s PairState) TotalShoes() int { return s.CompletePairs()*2 + s.IncompletePairs }

// Check verifica 0 <= IncompletePairs <= Stock.
func (s PairState) Check() error {
	if s.Stock < 0 || s.IncompletePairs < 0 || s.IncompletePairs > s.Stock {
		return fmt.Errorf("%w: stock=%d incompletos=%d", domain.ErrInvariantViolation, s.Stock, s.IncompletePairs)
	}
	return nil
}

func checkQuantity(lendType string, q int) error {
	switch lendType {
	case entity.LendTypePair:
		if q <= 0 {
			return fmt.Errorf("%w: cantidad debe ser mayor que cero", domain.ErrInvalidInput)
		}
	case entity.LendTypeSingle:
		if q != 1 {
			return fmt.Errorf("%w: un préstamo suelto es de un solo zapato", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: tipo de préstamo %q", domain.ErrInvalidInput, lendType)
	}
	return nil
}

// LendFromSource aplica en la duka origen el préstamo de q pares o de un zapato suelto.
// Para "single" devuelve también el efecto aplicado (entity.SingleEffect*), necesario para la devolución.
func LendFromSource(s PairState, lendType string, q int) (PairState, string, error) {
	if err := s.Check(); err != nil {
		return s, "", err
	}
	if err := checkQuantity(lendType, q); err != nil {
		return s, "", err
	}
	if lendType == entity.LendTypePair {
		if s.CompletePairs() < q {
			return s, "", fmt.Errorf("%w: %d pares completos, se piden %d", domain.ErrInsufficientStock, s.CompletePairs(), q)
		}
		return PairState{Stock: s.Stock - q, IncompletePairs: s.IncompletePairs}, "", nil
	}

	if s.IncompletePairs > 0 {
		// El zapato prestado es el que quedaba de un par incompleto: el par sale del stock.
		return PairState{Stock: s.Stock - 1, IncompletePairs: s.IncompletePairs - 1}, entity.SingleEffectConsumed, nil
	}
	if s.Stock == 0 {
		return s, "", fmt.Errorf("%w: sin zapatos en la duka", domain.ErrInsufficientStock)
	}
	return PairState{Stock: s.Stock, IncompletePairs: s.IncompletePairs + 1}, entity.SingleEffectOpened, nil
}

// ReceiveAtDestination aplica la llegada del préstamo a la duka destino.
// Un zapato suelto entra como un par incompleto nuevo: Stock += 1, IncompletePairs += 1.
func ReceiveAtDestination(s PairState, lendType string, q int) (PairState, error) {
	if err := checkQuantity(lendType, q); err != nil {
		return s, err
	}
	var next PairState
	if lendType == entity.LendTypePair {
		next = PairState{Stock: s.Stock + q, IncompletePairs: s.IncompletePairs}
	} else {
		next = PairState{Stock: s.Stock + 1, IncompletePairs: s.IncompletePairs + 1}
	}
	return next, next.Check()
}

// ReturnToSource es la inversa exacta de LendFromSource. Cada campo se acota en cero
// y el resultado debe cumplir el invariante.
func ReturnToSource(s PairState, lendType string, q int, singleEffect string) (PairState, error) {
	if err := checkQuantity(lendType, q); err != nil {
		return s, err
	}
	var next PairState
	switch {
	case lendType == entity.LendTypePair:
		next = PairState{Stock: s.Stock + q, IncompletePairs: s.IncompletePairs}
	case singleEffect == entity.SingleEffectConsumed:
		next = PairState{Stock: s.Stock + 1, IncompletePairs: s.IncompletePairs + 1}
	case singleEffect == entity.SingleEffectOpened:
		next = PairState{Stock: s.Stock, IncompletePairs: max(0, s.IncompletePairs-1)}
	default:
		return s, fmt.Errorf("%w: efecto de préstamo suelto %q", domain.ErrInvalidInput, singleEffect)
	}
	return next, next.Check()
}

// TakeBackFromDestination es la inversa de ReceiveAtDestination, acotada en cero.
func TakeBackFromDestination(s PairState, lendType string, q int) (PairState, error) {
	if err := checkQuantity(lendType, q); err != nil {
		return s, err
	}
	var next PairState
	if lendType == entity.LendTypePair {
		next = PairState{Stock: max(0, s.Stock-q), IncompletePairs: s.IncompletePairs}
	} else {
		next = PairState{Stock: max(0, s.Stock-1), IncompletePairs: max(0, s.IncompletePairs-1)}
	}
	return next, next.Check()
}

// Sell descuenta q pares completos vendidos en la duka.
func Sell(s PairState, q int) (PairState, error) {
	if q <= 0 {
		return s, fmt.Errorf("%w: cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if err := s.Check(); err != nil {
		return s, err
	}
	if s.CompletePairs() < q {
		return s, fmt.Errorf("%w: %d pares completos, se venden %d", domain.ErrInsufficientStock, s.CompletePairs(), q)
	}
	return PairState{Stock: s.Stock - q, IncompletePairs: s.IncompletePairs}, nil
}

// RestoreSale devuelve al stock q pares de una venta devuelta.
func RestoreSale(s PairState, q int) (PairState, error) {
	if q <= 0 {
		return s, fmt.Errorf("%w: cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	next := PairState{Stock: s.Stock + q, IncompletePairs: s.IncompletePairs}
	return next, next.Check()
}
