// Package consignment calcula y liquida la deuda de la tienda con los dueños de la mercadería.
//
// La deuda nace de las líneas vendidas y pagadas, valorizadas al costo congelado en la venta,
// más los ajustes manuales no aplicados. Una liquidación puede cubrir una parte de cada línea.
package consignment

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/Consignacion-api/internal/application/dto"
	"github.com/jhoicas/Consignacion-api/internal/domain"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/inventory"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
	"github.com/jhoicas/Consignacion-api/pkg/logger"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/jhoicas/Consignacion-api/internal/application/consignment")

// BalanceUseCase saldo, liquidaciones y ajustes de los dueños.
type BalanceUseCase struct {
	txRunner       TxRunner
	ownerRepo      repository.OwnerRepository
	saleRepo       repository.SaleRepository
	adjRepo        repository.BalanceAdjustmentRepository
	settlementRepo repository.SettlementRepository
	log            *logger.Logger
	now            func() time.Time
}

// NewBalanceUseCase construye el caso de uso.
func NewBalanceUseCase(
	txRunner TxRunner,
	ownerRepo repository.OwnerRepository,
	saleRepo repository.SaleRepository,
	adjRepo repository.BalanceAdjustmentRepository,
	settlementRepo repository.SettlementRepository,
	log *logger.Logger,
) *BalanceUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &BalanceUseCase{
		txRunner:       txRunner,
		ownerRepo:      ownerRepo,
		saleRepo:       saleRepo,
		adjRepo:        adjRepo,
		settlementRepo: settlementRepo,
		log:            log.Component("consignment"),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// ComputeOwnerBalance calcula lo que la tienda le debe al dueño. Solo lectura.
//
//	debtFromSales       = Σ LineAmount(quantity - settledQuantity, costAtSale)
//	debtFromAdjustments = Σ amount de ajustes no aplicados
//	totalNetDebt        = debtFromSales + debtFromAdjustments
func (uc *BalanceUseCase) ComputeOwnerBalance(ctx context.Context, ownerID string) (*dto.OwnerBalanceDTO, error) {
	ctx, span := tracer.Start(ctx, "consignment.ComputeOwnerBalance", trace.WithAttributes(attribute.String("owner.id", ownerID)))
	defer span.End()

	out, err := uc.computeOwnerBalance(ctx, ownerID)
	if err != nil {
		return nil, uc.fail(span, "computeOwnerBalance", err, ownerID)
	}
	span.SetAttributes(attribute.String("balance.total", out.TotalNetDebt.String()))
	return out, nil
}

func (uc *BalanceUseCase) computeOwnerBalance(ctx context.Context, ownerID string) (*dto.OwnerBalanceDTO, error) {
	if err := uc.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	pending, err := uc.saleRepo.ListPendingByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	adjustments, err := uc.adjRepo.ListUnappliedByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := &dto.OwnerBalanceDTO{
		OwnerID:             ownerID,
		DebtFromSales:       decimal.Zero,
		DebtFromAdjustments: decimal.Zero,
		PendingLines:        make([]dto.PendingLineDTO, 0, len(pending)),
		PendingAdjustments:  make([]dto.AdjustmentDTO, 0, len(adjustments)),
	}
	for _, p := range pending {
		qty := p.Quantity - p.SettledQuantity
		if qty <= 0 {
			continue
		}
		amount := inventory.Money(inventory.LineAmount(qty, p.CostAtSale, p.UnitOfMeasure))
		out.DebtFromSales = out.DebtFromSales.Add(amount)
		out.PendingItemsCount += qty
		out.PendingLines = append(out.PendingLines, dto.PendingLineDTO{
			SaleItemID:      p.SaleItemID,
			SaleID:          p.SaleID,
			VariantID:       p.VariantID,
			VariantName:     p.VariantName,
			ProductName:     p.ProductName,
			UnitOfMeasure:   string(p.UnitOfMeasure),
			PendingQuantity: qty,
			DisplayQuantity: inventory.FromBaseUnits(qty, p.UnitOfMeasure),
			CostAtSale:      p.CostAtSale,
			Amount:          amount,
			SoldAt:          p.SoldAt,
		})
	}
	for _, a := range adjustments {
		out.DebtFromAdjustments = out.DebtFromAdjustments.Add(a.Amount)
		out.PendingAdjustments = append(out.PendingAdjustments, toAdjustmentDTO(a))
	}
	out.TotalNetDebt = out.DebtFromSales.Add(out.DebtFromAdjustments)
	return out, nil
}

func (uc *BalanceUseCase) requireOwner(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return domain.ErrInvalidInput
	}
	owner, err := uc.ownerRepo.GetByID(ctx, ownerID)
	if err != nil {
		return err
	}
	if owner == nil {
		return domain.ErrNotFound
	}
	return nil
}

// fail convierte err al contrato del caso de uso, lo registra una vez y marca el span.
func (uc *BalanceUseCase) fail(span trace.Span, op string, err error, ownerID string) error {
	err = domain.Persistence(op, err)
	l := uc.log.Operation(op)
	switch {
	case errors.Is(err, domain.ErrPersistence):
		l.Error().Err(err).Str("owner_id", ownerID).Msg("falla de persistencia")
	case errors.Is(err, domain.ErrConcurrentSettlement):
		l.Warn().Err(err).Str("owner_id", ownerID).Msg("liquidación en conflicto con otro proceso")
	default:
		l.Debug().Err(err).Str("owner_id", ownerID).Msg("operación rechazada")
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func toAdjustmentDTO(a *entity.BalanceAdjustment) dto.AdjustmentDTO {
	return dto.AdjustmentDTO{
		ID:           a.ID,
		OwnerID:      a.OwnerID,
		Amount:       a.Amount,
		Description:  a.Description,
		IsApplied:    a.IsApplied,
		SettlementID: a.SettlementID,
		AppliedAt:    a.AppliedAt,
		CreatedBy:    a.CreatedBy,
		CreatedAt:    a.CreatedAt,
	}
}
