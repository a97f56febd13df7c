// Package sales registra ventas del punto de venta sobre el ledger de stock.
// Al vender se congelan el costo y el precio de la variante: son la base de la deuda con el dueño.
package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
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

var tracer = otel.Tracer("github.com/jhoicas/Consignacion-api/internal/application/sales")

// SaleUseCase checkout, anulación y cobro de ventas.
type SaleUseCase struct {
	txRunner TxRunner
	ledger   StockLedger
	saleRepo repository.SaleRepository
	reports  ReportInvalidator
	log      *logger.Logger
	now      func() time.Time
}

// NewSaleUseCase construye el caso de uso. reports puede ser nil (sin caché de reportes).
func NewSaleUseCase(txRunner TxRunner, ledger StockLedger, saleRepo repository.SaleRepository, reports ReportInvalidator, log *logger.Logger) *SaleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &SaleUseCase{
		txRunner: txRunner,
		ledger:   ledger,
		saleRepo: saleRepo,
		reports:  reports,
		log:      log.Component("sales"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SaleLine línea de checkout. RawQuantity en unidades o kilogramos.
type SaleLine struct {
	VariantID   string
	RawQuantity float64
}

// SaleInput entrada de Checkout. PaymentStatus vacío equivale a PAID (venta de mostrador).
type SaleInput struct {
	UserID        string
	PaymentStatus string
	Lines         []SaleLine
}

// Checkout registra la venta en una transacción: por cada línea normaliza la cantidad, resta stock
// de forma condicional, agrega un movimiento SALE y congela costo y precio de la variante.
// Si alguna línea no tiene stock se aborta la venta completa.
func (uc *SaleUseCase) Checkout(ctx context.Context, input SaleInput) (*dto.SaleDTO, error) {
	ctx, span := tracer.Start(ctx, "sales.Checkout", trace.WithAttributes(attribute.Int("sale.lines", len(input.Lines))))
	defer span.End()

	out, err := uc.checkout(ctx, input)
	if err != nil {
		return nil, uc.fail(span, "checkout", err, "")
	}
	span.SetAttributes(attribute.String("sale.id", out.ID))
	return out, nil
}

func (uc *SaleUseCase) checkout(ctx context.Context, input SaleInput) (*dto.SaleDTO, error) {
	if input.UserID == "" || len(input.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	payment := input.PaymentStatus
	if payment == "" {
		payment = entity.PaymentStatusPaid
	}
	if payment != entity.PaymentStatusPaid && payment != entity.PaymentStatusPending {
		return nil, fmt.Errorf("%w: estado de pago %q", domain.ErrInvalidInput, payment)
	}
	for _, l := range input.Lines {
		if l.VariantID == "" {
			return nil, domain.ErrInvalidInput
		}
	}

	now := uc.now()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		Status:        entity.SaleStatusCompleted,
		PaymentStatus: payment,
		UserID:        input.UserID,
		CreatedAt:     now,
	}
	reason := "venta " + sale.ID
	order := variantOrder(len(input.Lines), func(i int) string { return input.Lines[i].VariantID })
	var items []dto.SaleItemDTO

	err := uc.txRunner.RunSale(ctx, func(
		variantRepo repository.ProductVariantRepository,
		movRepo repository.StockMovementRepository,
		saleRepo repository.SaleRepository,
	) error {
		items = make([]dto.SaleItemDTO, len(input.Lines))
		total := decimal.Zero
		lines := make([]*entity.SaleItem, len(input.Lines))

		for _, i := range order {
			l := input.Lines[i]
			// FOR UPDATE: costo y precio no cambian entre la lectura y la resta
			vp, err := variantRepo.GetForUpdate(ctx, l.VariantID)
			if err != nil {
				return fmt.Errorf("lock variant: %w", err)
			}
			if vp == nil {
				return domain.ErrNotFound
			}
			uom := vp.Product.UnitOfMeasure
			qty, err := inventory.ToBaseUnits(l.RawQuantity, uom)
			if err != nil {
				return err
			}
			if _, err := uc.ledger.ApplyInTx(ctx, variantRepo, movRepo, l.VariantID, -qty, entity.MovementTypeSale, reason, input.UserID, now); err != nil {
				return err
			}

			item := &entity.SaleItem{
				ID:          uuid.New().String(),
				SaleID:      sale.ID,
				VariantID:   l.VariantID,
				Quantity:    qty,
				CostAtSale:  vp.Variant.CostPrice,
				PriceAtSale: vp.Variant.SalePrice,
			}
			lineTotal := inventory.LineAmount(qty, item.PriceAtSale, uom)
			total = total.Add(lineTotal)
			lines[i] = item
			items[i] = toSaleItemDTO(item, uom, lineTotal)
		}

		sale.Total = inventory.Money(total)
		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}
		for _, it := range lines {
			if err := saleRepo.CreateItem(ctx, it); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("op", "checkout").
		Str("sale_id", sale.ID).
		Int("lines", len(items)).
		Str("total", sale.Total.String()).
		Msg("venta registrada")

	out := toSaleDTO(sale)
	out.Items = items
	return out, nil
}

// CancelSale anula una venta y devuelve su mercadería al stock con movimientos SALE_CANCELLED.
// Rechaza con ErrConflict si ya estaba anulada o si alguna línea ya se liquidó al dueño.
func (uc *SaleUseCase) CancelSale(ctx context.Context, saleID, userID string) (*dto.SaleDTO, error) {
	ctx, span := tracer.Start(ctx, "sales.CancelSale", trace.WithAttributes(attribute.String("sale.id", saleID)))
	defer span.End()

	out, err := uc.cancel(ctx, saleID, userID)
	if err != nil {
		return nil, uc.fail(span, "cancelSale", err, saleID)
	}
	return out, nil
}

func (uc *SaleUseCase) cancel(ctx context.Context, saleID, userID string) (*dto.SaleDTO, error) {
	if saleID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	var result *dto.SaleDTO
	var soldAt time.Time

	err := uc.txRunner.RunSale(ctx, func(
		variantRepo repository.ProductVariantRepository,
		movRepo repository.StockMovementRepository,
		saleRepo repository.SaleRepository,
	) error {
		// FOR UPDATE espera a las liquidaciones en curso (FOR SHARE) sobre esta venta
		sale, err := saleRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			return fmt.Errorf("lock sale: %w", err)
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if sale.Status != entity.SaleStatusCompleted {
			return fmt.Errorf("%w: la venta ya está anulada", domain.ErrConflict)
		}
		soldAt = sale.CreatedAt
		items, err := saleRepo.ListItems(ctx, saleID)
		if err != nil {
			return fmt.Errorf("list sale items: %w", err)
		}
		for _, it := range items {
			if it.SettledQuantity > 0 {
				return fmt.Errorf("%w: la venta tiene líneas liquidadas al dueño", domain.ErrConflict)
			}
		}

		reason := "anulación venta " + saleID
		dtoItems := make([]dto.SaleItemDTO, len(items))
		for _, i := range variantOrder(len(items), func(i int) string { return items[i].VariantID }) {
			it := items[i]
			if _, err := uc.ledger.ApplyInTx(ctx, variantRepo, movRepo, it.VariantID, it.Quantity, entity.MovementTypeSaleCancelled, reason, userID, now); err != nil {
				return err
			}
			vp, err := variantRepo.GetWithProduct(ctx, it.VariantID)
			if err != nil {
				return fmt.Errorf("load variant: %w", err)
			}
			uom := entity.UnitOfMeasureUnit
			if vp != nil {
				uom = vp.Product.UnitOfMeasure
			}
			dtoItems[i] = toSaleItemDTO(it, uom, inventory.LineAmount(it.Quantity, it.PriceAtSale, uom))
		}

		ok, err := saleRepo.Cancel(ctx, saleID, now)
		if err != nil {
			return fmt.Errorf("cancel sale: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: la venta cambió de estado", domain.ErrConflict)
		}
		sale.Status = entity.SaleStatusCancelled
		sale.CancelledAt = &now
		result = toSaleDTO(sale)
		result.Items = dtoItems
		return nil
	})
	if err != nil {
		return nil, err
	}

	// La anulación cambia los reportes del mes de la venta, aunque ese mes ya esté cerrado.
	if uc.reports != nil {
		uc.reports.InvalidateMonth(ctx, soldAt)
	}
	uc.log.Info().Str("op", "cancelSale").Str("sale_id", saleID).Msg("venta anulada")
	return result, nil
}

// MarkPaid registra el cobro de una venta pendiente: desde ese momento genera deuda con los dueños.
func (uc *SaleUseCase) MarkPaid(ctx context.Context, saleID string) (*dto.SaleDTO, error) {
	ctx, span := tracer.Start(ctx, "sales.MarkPaid", trace.WithAttributes(attribute.String("sale.id", saleID)))
	defer span.End()

	if saleID == "" {
		return nil, uc.fail(span, "markPaid", domain.ErrInvalidInput, saleID)
	}
	ok, err := uc.saleRepo.MarkPaid(ctx, saleID)
	if err != nil {
		return nil, uc.fail(span, "markPaid", err, saleID)
	}
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, uc.fail(span, "markPaid", err, saleID)
	}
	if sale == nil {
		return nil, uc.fail(span, "markPaid", domain.ErrNotFound, saleID)
	}
	if !ok {
		return nil, uc.fail(span, "markPaid", fmt.Errorf("%w: la venta no está pendiente de pago", domain.ErrConflict), saleID)
	}
	return toSaleDTO(sale), nil
}

func (uc *SaleUseCase) fail(span trace.Span, op string, err error, saleID string) error {
	err = domain.Persistence(op, err)
	l := uc.log.Operation(op)
	switch {
	case errors.Is(err, domain.ErrPersistence):
		l.Error().Err(err).Str("sale_id", saleID).Msg("falla de persistencia")
	case errors.Is(err, domain.ErrInsufficientStock):
		l.Warn().Str("sale_id", saleID).Msg("venta rechazada por stock insuficiente")
	default:
		l.Debug().Err(err).Str("sale_id", saleID).Msg("operación rechazada")
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// variantOrder devuelve los índices 0..n-1 ordenados por id de variante. Checkout y anulación
// bloquean las filas de product_variants en ese orden, así dos transacciones con las mismas
// variantes nunca se esperan en ciclo.
func variantOrder(n int, variantID func(int) string) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return variantID(order[a]) < variantID(order[b]) })
	return order
}

func toSaleDTO(s *entity.Sale) *dto.SaleDTO {
	return &dto.SaleDTO{
		ID:            s.ID,
		Status:        s.Status,
		PaymentStatus: s.PaymentStatus,
		Total:         s.Total,
		UserID:        s.UserID,
		CreatedAt:     s.CreatedAt,
		CancelledAt:   s.CancelledAt,
		Items:         []dto.SaleItemDTO{},
	}
}

func toSaleItemDTO(it *entity.SaleItem, uom entity.UnitOfMeasure, lineTotal decimal.Decimal) dto.SaleItemDTO {
	return dto.SaleItemDTO{
		ID:              it.ID,
		VariantID:       it.VariantID,
		Quantity:        it.Quantity,
		DisplayQuantity: inventory.FromBaseUnits(it.Quantity, uom),
		CostAtSale:      it.CostAtSale,
		PriceAtSale:     it.PriceAtSale,
		LineTotal:       inventory.Money(lineTotal),
		SettledQuantity: it.SettledQuantity,
	}
}
