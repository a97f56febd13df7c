package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
)

// StockDrift variante cuyo stock materializado no coincide con la suma de su ledger.
type StockDrift struct {
	VariantID string
	SKU       string
	Stock     int64
	LedgerSum int64
}

// StockMovementRepository define el puerto del ledger de movimientos (solo inserción).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByVariant lista movimientos de una variante, más recientes primero.
	ListByVariant(ctx context.Context, variantID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	// ListForReplay devuelve todos los movimientos de una variante en orden cronológico.
	ListForReplay(ctx context.Context, variantID string) ([]*entity.StockMovement, error)
	// ListStockDrift devuelve las variantes cuyo stock difiere de la suma del ledger.
	ListStockDrift(ctx context.Context) ([]StockDrift, error)
}
