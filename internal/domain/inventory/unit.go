package inventory

import (
	"math"

	"github.com/jhoicas/Consignacion-api/internal/domain"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// GramsPerKilogram factor entre la unidad de captura (kg) y la unidad base (g) de productos pesados.
const GramsPerKilogram = 1000

var gramsPerKilogram = decimal.NewFromInt(GramsPerKilogram)

// ToBaseUnits convierte la cantidad capturada por el usuario a la unidad base del producto.
//   - UNIT: la cantidad debe ser entera.
//   - GRAM: la cantidad llega en kilogramos y se guarda en gramos enteros (redondeo al gramo).
//
// Rechaza con ErrInvalidQuantity valores no finitos, cero o negativos.
func ToBaseUnits(raw float64, uom entity.UnitOfMeasure) (int64, error) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	// NewFromFloat usa la representación decimal más corta: 1.005 kg es 1005 g, no 1004.999...
	qty := decimal.NewFromFloat(raw)

	switch uom {
	case entity.UnitOfMeasureUnit:
		if !qty.IsInteger() {
			return 0, domain.ErrInvalidQuantity
		}
		return qty.IntPart(), nil
	case entity.UnitOfMeasureGram:
		grams := qty.Mul(gramsPerKilogram).Round(0)
		if grams.Sign() <= 0 {
			return 0, domain.ErrInvalidQuantity
		}
		return grams.IntPart(), nil
	default:
		return 0, domain.ErrInvalidQuantity
	}
}

// FromBaseUnits convierte una cantidad en unidad base a la unidad de visualización
// (kilogramos para GRAM, unidades para UNIT).
func FromBaseUnits(base int64, uom entity.UnitOfMeasure) decimal.Decimal {
	q := decimal.NewFromInt(base)
	if uom == entity.UnitOfMeasureGram {
		return q.Div(gramsPerKilogram)
	}
	return q
}

// Direction devuelve el signo (+1 o -1) que un tipo de movimiento aplica al stock, o 0 si el tipo no existe.
func Direction(t entity.MovementType) int64 {
	switch t {
	case entity.MovementTypeEntry, entity.MovementTypeReturn, entity.MovementTypeSaleCancelled:
		return 1
	case entity.MovementTypeSale, entity.MovementTypeAdjustment, entity.MovementTypeOwnerWithdrawal:
		return -1
	}
	return 0
}
