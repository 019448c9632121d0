package inventory

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces decimales usados para montos monetarios.
const CurrencyPlaces int32 = 2

// UnitCostPlaces decimales con que se guardan costo unitario y precio (NUMERIC(18,4)).
const UnitCostPlaces int32 = 4

// Cotas exclusivas de lo que cabe en NUMERIC(18,4) y NUMERIC(18,2).
var (
	MaxUnitCost  = decimal.New(1, 14)
	MaxTotalCost = decimal.New(1, 16)
)

// UnitCostStorable indica si el costo se guarda tal cual, sin redondeo ni desborde.
// Así unitCost × cantidad persistido coincide siempre con TotalCost.
func UnitCostStorable(unitCost decimal.Decimal) bool {
	return unitCost.Equal(unitCost.Round(UnitCostPlaces)) && unitCost.Abs().LessThan(MaxUnitCost)
}

// TotalCost calcula el costo total de un movimiento: UnitCost * Quantity redondeado a centavos.
// Devuelve nil si no hay costo unitario. Es una función pura; el coordinador la invoca
// antes de escribir en el libro.
func TotalCost(unitCost *decimal.Decimal, quantity int64) *decimal.Decimal {
	if unitCost == nil {
		return nil
	}
	total := unitCost.Mul(decimal.NewFromInt(quantity)).Round(CurrencyPlaces)
	return &total
}

// NormalizeObservation recorta espacios y colapsa saltos de línea y espacios repetidos.
func NormalizeObservation(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
