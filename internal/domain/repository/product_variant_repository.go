package repository

import (
	"context"

	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductVariantRepository define el puerto de persistencia para variantes y su stock.
// Es el único camino autorizado para mutar ProductVariant.Stock; se usa dentro de transacciones
// junto con StockMovementRepository.
type ProductVariantRepository interface {
	// GetWithProduct devuelve la variante con su producto, o nil si no existe.
	GetWithProduct(ctx context.Context, variantID string) (*entity.VariantWithProduct, error)
	// GetForUpdate igual que GetWithProduct pero bloquea la fila de la variante (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, variantID string) (*entity.VariantWithProduct, error)
	// DecrementStock resta qty solo si stock >= qty, en una sola escritura condicional.
	// Devuelve false si ninguna fila cumplió la condición.
	DecrementStock(ctx context.Context, variantID string, qty int64) (bool, error)
	// IncrementStock suma qty sin condición. Devuelve domain.ErrNotFound si la variante no existe.
	IncrementStock(ctx context.Context, variantID string, qty int64) error
	// UpdateCostPrice actualiza el costo promedio de la variante.
	UpdateCostPrice(ctx context.Context, variantID string, cost decimal.Decimal) error
}

// OwnerRepository define el puerto de lectura de dueños.
type OwnerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Owner, error)
}
