package consignment

import (
	"context"

	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
)

// TxRunner transacción de liquidación: avanzar líneas, aplicar ajustes y registrar el pago van juntos.
type TxRunner interface {
	RunSettlement(ctx context.Context, fn func(
		saleRepo repository.SaleRepository,
		adjRepo repository.BalanceAdjustmentRepository,
		settlementRepo repository.SettlementRepository,
	) error) error
}
