package consignment

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/Consignacion-api/internal/application/dto"
	"github.com/jhoicas/Consignacion-api/internal/domain"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/inventory"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultSettlementPage = 20
	maxSettlementPage     = 100
)

// SettleLine cantidad (en unidad base) de una línea de venta a liquidar.
type SettleLine struct {
	SaleItemID string
	Quantity   int64
}

// SettleInput selección que el usuario liquida al dueño.
type SettleInput struct {
	OwnerID       string
	UserID        string
	Lines         []SettleLine
	AdjustmentIDs []string
}

// SettleOwnerBalance liquida la selección en una sola transacción:
//   - crea la cabecera de la liquidación;
//   - avanza settled_quantity de cada línea con un UPDATE condicional;
//   - marca cada ajuste como aplicado con un UPDATE condicional;
//   - guarda el total (líneas + ajustes).
//
// Si otra liquidación ganó la carrera por una línea o un ajuste devuelve ErrConcurrentSettlement
// y no queda nada escrito.
func (uc *BalanceUseCase) SettleOwnerBalance(ctx context.Context, input SettleInput) (*dto.SettlementDTO, error) {
	ctx, span := tracer.Start(ctx, "consignment.SettleOwnerBalance", trace.WithAttributes(
		attribute.String("owner.id", input.OwnerID),
		attribute.Int("settlement.lines", len(input.Lines)),
		attribute.Int("settlement.adjustments", len(input.AdjustmentIDs)),
	))
	defer span.End()

	out, err := uc.settle(ctx, input)
	if err != nil {
		return nil, uc.fail(span, "settleOwnerBalance", err, input.OwnerID)
	}
	span.SetAttributes(attribute.String("settlement.id", out.ID))
	return out, nil
}

func validateSelection(input SettleInput) error {
	if input.OwnerID == "" || input.UserID == "" {
		return domain.ErrInvalidInput
	}
	if len(input.Lines) == 0 && len(input.AdjustmentIDs) == 0 {
		return fmt.Errorf("%w: selección vacía", domain.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(input.Lines))
	for _, l := range input.Lines {
		if l.SaleItemID == "" {
			return domain.ErrInvalidInput
		}
		if l.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
		if seen[l.SaleItemID] {
			return fmt.Errorf("%w: línea %s repetida", domain.ErrInvalidInput, l.SaleItemID)
		}
		seen[l.SaleItemID] = true
	}
	seenAdj := make(map[string]bool, len(input.AdjustmentIDs))
	for _, id := range input.AdjustmentIDs {
		if id == "" || seenAdj[id] {
			return fmt.Errorf("%w: ajuste vacío o repetido", domain.ErrInvalidInput)
		}
		seenAdj[id] = true
	}
	return nil
}

func (uc *BalanceUseCase) settle(ctx context.Context, input SettleInput) (*dto.SettlementDTO, error) {
	if err := validateSelection(input); err != nil {
		return nil, err
	}
	if err := uc.requireOwner(ctx, input.OwnerID); err != nil {
		return nil, err
	}

	now := uc.now()
	settlement := &entity.Settlement{
		ID:          uuid.New().String(),
		OwnerID:     input.OwnerID,
		TotalAmount: decimal.Zero,
		UserID:      input.UserID,
		CreatedAt:   now,
	}
	// Filas de sale_items y balance_adjustments se bloquean en orden de id.
	lines := append([]SettleLine(nil), input.Lines...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].SaleItemID < lines[j].SaleItemID })
	adjustmentIDs := append([]string(nil), input.AdjustmentIDs...)
	sort.Strings(adjustmentIDs)

	var out *dto.SettlementDTO

	err := uc.txRunner.RunSettlement(ctx, func(
		saleRepo repository.SaleRepository,
		adjRepo repository.BalanceAdjustmentRepository,
		settlementRepo repository.SettlementRepository,
	) error {
		if err := settlementRepo.Create(ctx, settlement); err != nil {
			return err
		}
		out = &dto.SettlementDTO{
			ID:          settlement.ID,
			OwnerID:     settlement.OwnerID,
			UserID:      settlement.UserID,
			CreatedAt:   settlement.CreatedAt,
			Items:       make([]dto.SettlementItemDTO, 0, len(input.Lines)),
			Adjustments: make([]dto.AdjustmentDTO, 0, len(input.AdjustmentIDs)),
		}
		total := decimal.Zero
		itemsByLine := make(map[string]dto.SettlementItemDTO, len(lines))
		adjustmentsByID := make(map[string]dto.AdjustmentDTO, len(adjustmentIDs))

		for _, l := range lines {
			item, err := settleLine(ctx, saleRepo, settlementRepo, settlement.ID, input.OwnerID, l)
			if err != nil {
				return err
			}
			total = total.Add(item.Amount)
			itemsByLine[l.SaleItemID] = dto.SettlementItemDTO{
				ID:         item.ID,
				SaleItemID: item.SaleItemID,
				Quantity:   item.Quantity,
				CostAtSale: item.CostAtSale,
				Amount:     item.Amount,
			}
		}

		for _, id := range adjustmentIDs {
			amount, ok, err := adjRepo.Apply(ctx, id, input.OwnerID, settlement.ID, now)
			if err != nil {
				return err
			}
			if !ok {
				existing, err := adjRepo.GetByID(ctx, id)
				if err != nil {
					return err
				}
				if existing == nil || existing.OwnerID != input.OwnerID {
					return fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, id)
				}
				return fmt.Errorf("%w: ajuste %s", domain.ErrConcurrentSettlement, id)
			}
			total = total.Add(amount)
			applied, err := adjRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if applied != nil {
				adjustmentsByID[id] = toAdjustmentDTO(applied)
			}
		}

		// la respuesta conserva el orden de la selección
		for _, l := range input.Lines {
			out.Items = append(out.Items, itemsByLine[l.SaleItemID])
		}
		for _, id := range input.AdjustmentIDs {
			if a, ok := adjustmentsByID[id]; ok {
				out.Adjustments = append(out.Adjustments, a)
			}
		}

		settlement.TotalAmount = inventory.Money(total)
		out.TotalAmount = settlement.TotalAmount
		return settlementRepo.UpdateTotal(ctx, settlement.ID, settlement.TotalAmount)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("op", "settleOwnerBalance").
		Str("owner_id", input.OwnerID).
		Str("settlement_id", settlement.ID).
		Str("total", settlement.TotalAmount.String()).
		Int("lines", len(input.Lines)).
		Int("adjustments", len(input.AdjustmentIDs)).
		Msg("liquidación registrada")
	return out, nil
}

// settleLine valida que la línea pertenezca al dueño en una venta COMPLETED y PAID, y avanza su
// cantidad liquidada. La venta se bloquea en modo compartido para no cruzarse con una anulación.
func settleLine(
	ctx context.Context,
	saleRepo repository.SaleRepository,
	settlementRepo repository.SettlementRepository,
	settlementID, ownerID string,
	l SettleLine,
) (*entity.SettlementItem, error) {
	si, err := saleRepo.GetSettleableItem(ctx, l.SaleItemID)
	if err != nil {
		return nil, err
	}
	if si == nil || si.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: línea %s", domain.ErrNotFound, l.SaleItemID)
	}
	sale, err := saleRepo.GetForShare(ctx, si.Item.SaleID)
	if err != nil {
		return nil, err
	}
	if sale == nil || !sale.GeneratesDebt() {
		return nil, fmt.Errorf("%w: la línea %s no pertenece a una venta pagada", domain.ErrNotFound, l.SaleItemID)
	}

	ok, err := saleRepo.AdvanceSettled(ctx, l.SaleItemID, l.Quantity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: línea %s", domain.ErrConcurrentSettlement, l.SaleItemID)
	}

	item := &entity.SettlementItem{
		ID:           uuid.New().String(),
		SettlementID: settlementID,
		SaleItemID:   l.SaleItemID,
		Quantity:     l.Quantity,
		CostAtSale:   si.Item.CostAtSale,
		Amount:       inventory.Money(inventory.LineAmount(l.Quantity, si.Item.CostAtSale, si.UnitOfMeasure)),
	}
	if err := settlementRepo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// CreateAdjustment registra un ajuste manual (positivo aumenta la deuda, negativo la reduce).
func (uc *BalanceUseCase) CreateAdjustment(ctx context.Context, ownerID string, amount decimal.Decimal, description, userID string) (*dto.AdjustmentDTO, error) {
	ctx, span := tracer.Start(ctx, "consignment.CreateAdjustment", trace.WithAttributes(attribute.String("owner.id", ownerID)))
	defer span.End()

	description = strings.TrimSpace(description)
	if amount.IsZero() || description == "" || userID == "" {
		return nil, uc.fail(span, "createAdjustment", domain.ErrInvalidInput, ownerID)
	}
	if err := uc.requireOwner(ctx, ownerID); err != nil {
		return nil, uc.fail(span, "createAdjustment", err, ownerID)
	}
	adj := &entity.BalanceAdjustment{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Amount:      inventory.Money(amount),
		Description: description,
		CreatedBy:   userID,
		CreatedAt:   uc.now(),
	}
	if err := uc.adjRepo.Create(ctx, adj); err != nil {
		return nil, uc.fail(span, "createAdjustment", err, ownerID)
	}
	out := toAdjustmentDTO(adj)
	return &out, nil
}

// ListSettlements historial de liquidaciones del dueño, más recientes primero.
func (uc *BalanceUseCase) ListSettlements(ctx context.Context, ownerID string, limit, offset int) (*dto.SettlementListResponse, error) {
	ctx, span := tracer.Start(ctx, "consignment.ListSettlements", trace.WithAttributes(attribute.String("owner.id", ownerID)))
	defer span.End()

	if offset < 0 {
		return nil, uc.fail(span, "listSettlements", domain.ErrInvalidInput, ownerID)
	}
	if limit <= 0 {
		limit = defaultSettlementPage
	}
	if limit > maxSettlementPage {
		limit = maxSettlementPage
	}
	if err := uc.requireOwner(ctx, ownerID); err != nil {
		return nil, uc.fail(span, "listSettlements", err, ownerID)
	}
	list, err := uc.settlementRepo.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, uc.fail(span, "listSettlements", err, ownerID)
	}
	out := &dto.SettlementListResponse{
		Items: make([]dto.SettlementDTO, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, s := range list {
		full, err := uc.loadSettlement(ctx, s)
		if err != nil {
			return nil, uc.fail(span, "listSettlements", err, ownerID)
		}
		out.Items = append(out.Items, *full)
	}
	return out, nil
}

// GetSettlement detalle de una liquidación con sus líneas y ajustes.
func (uc *BalanceUseCase) GetSettlement(ctx context.Context, settlementID string) (*dto.SettlementDTO, error) {
	ctx, span := tracer.Start(ctx, "consignment.GetSettlement", trace.WithAttributes(attribute.String("settlement.id", settlementID)))
	defer span.End()

	s, err := uc.settlementRepo.GetByID(ctx, settlementID)
	if err != nil {
		return nil, uc.fail(span, "getSettlement", err, "")
	}
	if s == nil {
		return nil, uc.fail(span, "getSettlement", domain.ErrNotFound, "")
	}
	out, err := uc.loadSettlement(ctx, s)
	if err != nil {
		return nil, uc.fail(span, "getSettlement", err, s.OwnerID)
	}
	return out, nil
}

func (uc *BalanceUseCase) loadSettlement(ctx context.Context, s *entity.Settlement) (*dto.SettlementDTO, error) {
	items, err := uc.settlementRepo.ListItems(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	adjustments, err := uc.adjRepo.ListBySettlement(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	out := &dto.SettlementDTO{
		ID:          s.ID,
		OwnerID:     s.OwnerID,
		TotalAmount: s.TotalAmount,
		UserID:      s.UserID,
		CreatedAt:   s.CreatedAt,
		Items:       make([]dto.SettlementItemDTO, 0, len(items)),
		Adjustments: make([]dto.AdjustmentDTO, 0, len(adjustments)),
	}
	for _, it := range items {
		out.Items = append(out.Items, dto.SettlementItemDTO{
			ID:         it.ID,
			SaleItemID: it.SaleItemID,
			Quantity:   it.Quantity,
			CostAtSale: it.CostAtSale,
			Amount:     it.Amount,
		})
	}
	for _, a := range adjustments {
		out.Adjustments = append(out.Adjustments, toAdjustmentDTO(a))
	}
	return out, nil
}
