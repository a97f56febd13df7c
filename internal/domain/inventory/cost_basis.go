package inventory

import (
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LineAmount es la única conversión cantidad × precio del sistema.
// perUnit es el precio o costo capturado por unidad (UNIT) o por kilogramo (GRAM);
// base es la cantidad en unidad base (unidades o gramos).
//
// La usan el saldo de dueños, las liquidaciones, las ventas y todos los reportes,
// para que la convención kg/gramo no se reimplemente en cada cálculo.
func LineAmount(base int64, perUnit decimal.Decimal, uom entity.UnitOfMeasure) decimal.Decimal {
	return FromBaseUnits(base, uom).Mul(perUnit)
}

// Money redondea un monto a centavos para presentarlo o persistirlo.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
