package inventory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
)

// MoneyScale decimales admitidos en precios y pagos; Postgres guarda NUMERIC(14, 2).
const MoneyScale = 2

// FitsMoneyScale informa si d no tiene más de MoneyScale decimales significativos.
func FitsMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}

// CompletePairs = Stock - IncompletePairs.
func CompletePairs(item *entity.InventoryItem) int {
	return item.Stock - item.IncompletePairs
}

// TotalShoes cuenta zapatos individuales: CompletePairs*2 + IncompletePairs.
func TotalShoes(item *entity.InventoryItem) int {
	return CompletePairs(item)*2 + item.IncompletePairs
}

// ParseLabels convierte una entrada separada por comas ("38, 39,40") en etiquetas sin vacíos.
// El orden de captura se conserva y se descartan duplicados exactos.
func ParseLabels(raw string) []string {
	parts := strings.Split(raw, ",")
	return NormalizeLabels(parts)
}

// NormalizeLabels recorta espacios, descarta vacíos y duplicados conservando el orden.
func NormalizeLabels(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// ValidateItem valida una línea de inventario antes de persistirla.
// Devuelve un error que envuelve domain.ErrInvalidInput con el motivo.
func ValidateItem(item *entity.InventoryItem) error {
	switch {
	case item == nil:
		return fmt.Errorf("%w: ítem vacío", domain.ErrInvalidInput)
	case strings.TrimSpace(item.StoreID) == "" || item.StoreID == entity.StoreIDAll:
		return fmt.Errorf("%w: store_id requerido", domain.ErrInvalidInput)
	case strings.TrimSpace(item.AtNo) == "":
		return fmt.Errorf("%w: @No requerido", domain.ErrInvalidInput)
	case strings.TrimSpace(item.Name) == "":
		return fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	case item.Stock < 0:
		return fmt.Errorf("%w: stock no puede ser negativo", domain.ErrInvalidInput)
	case item.IncompletePairs < 0:
		return fmt.Errorf("%w: pares incompletos no puede ser negativo", domain.ErrInvalidInput)
	case item.IncompletePairs > item.Stock:
		return fmt.Errorf("%w: pares incompletos (%d) mayor que stock (%d)", domain.ErrInvalidInput, item.IncompletePairs, item.Stock)
	case len(NormalizeLabels(item.Sizes)) == 0:
		return fmt.Errorf("%w: al menos una talla", domain.ErrInvalidInput)
	case len(NormalizeLabels(item.Colors)) == 0:
		return fmt.Errorf("%w: al menos un color", domain.ErrInvalidInput)
	case item.Price.LessThan(decimal.Zero):
		return fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
	case !FitsMoneyScale(item.Price):
		return fmt.Errorf("%w: precio con más de %d decimales", domain.ErrInvalidInput, MoneyScale)
	}
	return nil
}
