package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// BalanceAdjustmentRepository define el puerto de los ajustes manuales de saldo.
type BalanceAdjustmentRepository interface {
	Create(ctx context.Context, adj *entity.BalanceAdjustment) error
	GetByID(ctx context.Context, id string) (*entity.BalanceAdjustment, error)
	ListUnappliedByOwner(ctx context.Context, ownerID string) ([]*entity.BalanceAdjustment, error)
	ListBySettlement(ctx context.Context, settlementID string) ([]*entity.BalanceAdjustment, error)
	// Apply marca el ajuste como aplicado solo si pertenece al dueño y no estaba aplicado.
	// Devuelve el monto del ajuste y false si la condición no se cumplió.
	Apply(ctx context.Context, id, ownerID, settlementID string, at time.Time) (decimal.Decimal, bool, error)
}

// SettlementRepository define el puerto de persistencia de liquidaciones.
type SettlementRepository interface {
	Create(ctx context.Context, s *entity.Settlement) error
	UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error
	CreateItem(ctx context.Context, item *entity.SettlementItem) error
	GetByID(ctx context.Context, id string) (*entity.Settlement, error)
	ListItems(ctx context.Context, settlementID string) ([]*entity.SettlementItem, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*entity.Settlement, error)
}
