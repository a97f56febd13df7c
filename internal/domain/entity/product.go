package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnitOfMeasure unidad en la que se vende un producto. Define la unidad base del stock:
// unidades enteras para UNIT, gramos enteros para GRAM.
type UnitOfMeasure string

const (
	UnitOfMeasureUnit UnitOfMeasure = "UNIT" // piezas discretas
	UnitOfMeasureGram UnitOfMeasure = "GRAM" // productos pesados; se capturan en kg y se guardan en gramos
)

// Valid indica si la unidad es una de las soportadas.
func (u UnitOfMeasure) Valid() bool {
	return u == UnitOfMeasureUnit || u == UnitOfMeasureGram
}

// Product representa un producto en consignación. Pertenece a un dueño y a una categoría.
// UnitOfMeasure no cambia después de creado: el historial del ledger depende de ella.
type Product struct {
	ID            string
	OwnerID       string
	CategoryID    string
	Name          string
	UnitOfMeasure UnitOfMeasure
	CreatedAt     time.Time
}

// ProductVariant es la unidad que tiene stock (talla, color, presentación...).
// Stock se expresa en la unidad base del producto y solo cambia vía el ledger.
// CostPrice y SalePrice son por kilogramo en productos GRAM y por unidad en productos UNIT.
type ProductVariant struct {
	ID        string
	ProductID string
	Name      string
	SKU       string
	Stock     int64
	CostPrice decimal.Decimal
	SalePrice decimal.Decimal
	UpdatedAt time.Time
}

// VariantWithProduct variante junto con los datos del producto que el ledger necesita.
type VariantWithProduct struct {
	Variant ProductVariant
	Product Product
}
