package sales

import (
	"context"
	"time"

	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
)

// TxRunner transacción con ledger y ventas: la venta, sus líneas y los movimientos SALE se escriben juntos.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		variantRepo repository.ProductVariantRepository,
		movRepo repository.StockMovementRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// StockLedger aplica movimientos de stock dentro de la transacción del caller.
// Lo implementa *inventory.RegisterMovementUseCase.
type StockLedger interface {
	ApplyInTx(
		ctx context.Context,
		variantRepo repository.ProductVariantRepository,
		movRepo repository.StockMovementRepository,
		variantID string,
		delta int64,
		movType entity.MovementType,
		reason, userID string,
		at time.Time,
	) (*entity.StockMovement, error)
}

// ReportInvalidator descarta reportes cacheados de un mes. Lo implementa *analytics.FinancialReportUseCase.
type ReportInvalidator interface {
	InvalidateMonth(ctx context.Context, at time.Time)
}
