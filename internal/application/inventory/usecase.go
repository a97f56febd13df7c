package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
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

var tracer = otel.Tracer("github.com/jhoicas/Consignacion-api/internal/application/inventory")

// manualTypes tipos que se pueden registrar a mano. SALE y SALE_CANCELLED solo los escribe el flujo de ventas.
var manualTypes = map[entity.MovementType]bool{
	entity.MovementTypeEntry:           true,
	entity.MovementTypeReturn:          true,
	entity.MovementTypeAdjustment:      true,
	entity.MovementTypeOwnerWithdrawal: true,
}

// RegisterMovementUseCase registra movimientos de stock de forma transaccional.
// Toda resta de stock es una escritura condicional (stock >= n); ningún camino lee y luego escribe.
type RegisterMovementUseCase struct {
	txRunner    TxRunner
	variantRepo repository.ProductVariantRepository
	movRepo     repository.StockMovementRepository
	log         *logger.Logger
	now         func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	variantRepo repository.ProductVariantRepository,
	movRepo repository.StockMovementRepository,
	log *logger.Logger,
) *RegisterMovementUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &RegisterMovementUseCase{
		txRunner:    txRunner,
		variantRepo: variantRepo,
		movRepo:     movRepo,
		log:         log.Component("ledger"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// MovementInput entrada de RecordMovement.
// RawQuantity en unidades (UNIT) o kilogramos (GRAM), siempre positiva: el signo lo da el tipo.
// UnitCost solo aplica a ENTRY y está en la misma convención que CostPrice (por unidad o por kg).
type MovementInput struct {
	VariantID   string
	RawQuantity float64
	Type        entity.MovementType
	Reason      string
	UserID      string
	UnitCost    *decimal.Decimal
}

// RecordMovement valida la entrada, normaliza la cantidad a unidad base y en una sola transacción
// ajusta el stock y agrega el movimiento al ledger.
// Una resta que dejaría el stock negativo falla con ErrInsufficientStock sin escribir nada.
//
// Tipos aceptados: ENTRY, RETURN, ADJUSTMENT y OWNER_WITHDRAWAL. SALE y SALE_CANCELLED devuelven
// ErrInvalidMovementType: una venta aplica el mismo protocolo de resta condicional desde
// sales.SaleUseCase.Checkout (vía ApplyInTx), que además congela costo y precio en la línea.
func (uc *RegisterMovementUseCase) RecordMovement(ctx context.Context, input MovementInput) (*entity.StockMovement, error) {
	mov, _, err := uc.record(ctx, input)
	return mov, err
}

// record ejecuta RecordMovement y devuelve además la unidad de medida del producto.
func (uc *RegisterMovementUseCase) record(ctx context.Context, input MovementInput) (*entity.StockMovement, entity.UnitOfMeasure, error) {
	ctx, span := tracer.Start(ctx, "inventory.RecordMovement", trace.WithAttributes(
		attribute.String("variant.id", input.VariantID),
		attribute.String("movement.type", string(input.Type)),
	))
	defer span.End()

	mov, uom, err := uc.recordMovement(ctx, input)
	if err != nil {
		err = domain.Persistence("recordMovement", err)
		uc.logFailure("recordMovement", err, input.VariantID)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, "", err
	}
	span.SetAttributes(attribute.Int64("movement.quantity", mov.Quantity))
	return mov, uom, nil
}

func (uc *RegisterMovementUseCase) recordMovement(ctx context.Context, input MovementInput) (*entity.StockMovement, entity.UnitOfMeasure, error) {
	if !manualTypes[input.Type] {
		return nil, "", domain.ErrInvalidMovementType
	}
	if math.IsNaN(input.RawQuantity) || math.IsInf(input.RawQuantity, 0) || input.RawQuantity <= 0 {
		return nil, "", domain.ErrInvalidQuantity
	}
	if input.VariantID == "" || input.UserID == "" {
		return nil, "", domain.ErrInvalidInput
	}
	if input.UnitCost != nil {
		if input.Type != entity.MovementTypeEntry || input.UnitCost.IsNegative() {
			return nil, "", fmt.Errorf("%w: costo unitario solo en ENTRY y no negativo", domain.ErrInvalidInput)
		}
	}

	vp, err := uc.variantRepo.GetWithProduct(ctx, input.VariantID)
	if err != nil {
		return nil, "", fmt.Errorf("load variant: %w", err)
	}
	if vp == nil {
		return nil, "", domain.ErrNotFound
	}
	uom := vp.Product.UnitOfMeasure

	base, err := inventory.ToBaseUnits(input.RawQuantity, uom)
	if err != nil {
		return nil, "", err
	}
	delta := base * inventory.Direction(input.Type)
	now := uc.now()

	var mov *entity.StockMovement
	err = uc.txRunner.Run(ctx, func(
		variantRepo repository.ProductVariantRepository,
		movRepo repository.StockMovementRepository,
	) error {
		if input.UnitCost != nil {
			if err := updateAverageCost(ctx, variantRepo, input.VariantID, base, *input.UnitCost); err != nil {
				return err
			}
		}
		var err error
		mov, err = uc.ApplyInTx(ctx, variantRepo, movRepo, input.VariantID, delta, input.Type, input.Reason, input.UserID, now)
		return err
	})
	if err != nil {
		return nil, "", err
	}

	uc.log.Info().
		Str("op", "recordMovement").
		Str("variant_id", input.VariantID).
		Str("type", string(input.Type)).
		Int64("quantity", delta).
		Msg("movimiento registrado")
	return mov, uom, nil
}

// updateAverageCost bloquea la variante (SELECT FOR UPDATE) y recalcula el costo promedio ponderado.
func updateAverageCost(ctx context.Context, variantRepo repository.ProductVariantRepository, variantID string, qty int64, unitCost decimal.Decimal) error {
	locked, err := variantRepo.GetForUpdate(ctx, variantID)
	if err != nil {
		return fmt.Errorf("lock variant: %w", err)
	}
	if locked == nil {
		return domain.ErrNotFound
	}
	newCost := inventory.CostCalculator(locked.Variant.Stock, locked.Variant.CostPrice, qty, unitCost)
	return variantRepo.UpdateCostPrice(ctx, variantID, newCost)
}

// ApplyInTx aplica un delta de stock y agrega su movimiento usando los repositorios de la transacción del caller.
// Delta negativo: resta condicional; si no alcanza devuelve ErrInsufficientStock y el caller debe abortar la tx.
// Lo usan RecordMovement y el flujo de ventas (SALE / SALE_CANCELLED).
func (uc *RegisterMovementUseCase) ApplyInTx(
	ctx context.Context,
	variantRepo repository.ProductVariantRepository,
	movRepo repository.StockMovementRepository,
	variantID string,
	delta int64,
	movType entity.MovementType,
	reason, userID string,
	at time.Time,
) (*entity.StockMovement, error) {
	if delta == 0 || inventory.Direction(movType)*delta <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	if delta < 0 {
		ok, err := variantRepo.DecrementStock(ctx, variantID, -delta)
		if err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		if !ok {
			return nil, domain.ErrInsufficientStock
		}
	} else {
		if err := variantRepo.IncrementStock(ctx, variantID, delta); err != nil {
			return nil, err
		}
	}

	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		VariantID: variantID,
		Quantity:  delta,
		Type:      movType,
		Reason:    reason,
		UserID:    userID,
		CreatedAt: at,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// logFailure: rechazos de negocio en Warn, fallas de almacenamiento en Error.
func (uc *RegisterMovementUseCase) logFailure(op string, err error, variantID string) {
	l := uc.log.Operation(op)
	switch {
	case errors.Is(err, domain.ErrPersistence):
		l.Error().Err(err).Str("variant_id", variantID).Msg("falla de persistencia")
	case errors.Is(err, domain.ErrInsufficientStock):
		l.Warn().Str("variant_id", variantID).Msg("stock insuficiente")
	default:
		l.Debug().Err(err).Str("variant_id", variantID).Msg("movimiento rechazado")
	}
}
