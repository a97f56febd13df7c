package inventory

import (
	"context"

	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que el stock y su movimiento se escriban juntos o no se escriban.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		variantRepo repository.ProductVariantRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}
