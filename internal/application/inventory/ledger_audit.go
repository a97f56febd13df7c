package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Consignacion-api/internal/application/dto"
	"github.com/jhoicas/Consignacion-api/internal/domain"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/inventory"
)

const (
	defaultMovementPage = 50
	maxMovementPage     = 500
)

// ListMovements historial de una variante, más reciente primero, con rango opcional [from, to).
func (uc *RegisterMovementUseCase) ListMovements(ctx context.Context, variantID string, from, to *time.Time, limit, offset int) (*dto.MovementListResponse, error) {
	ctx, span := tracer.Start(ctx, "inventory.ListMovements")
	defer span.End()

	if variantID == "" || offset < 0 {
		return nil, domain.ErrInvalidInput
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, fmt.Errorf("%w: rango de fechas vacío", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultMovementPage
	}
	if limit > maxMovementPage {
		limit = maxMovementPage
	}

	vp, err := uc.variantRepo.GetWithProduct(ctx, variantID)
	if err != nil {
		return nil, uc.persistence("listMovements", err, variantID)
	}
	if vp == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.movRepo.ListByVariant(ctx, variantID, from, to, limit, offset)
	if err != nil {
		return nil, uc.persistence("listMovements", err, variantID)
	}

	out := &dto.MovementListResponse{
		Items: make([]dto.MovementDTO, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, m := range list {
		out.Items = append(out.Items, toMovementDTO(m, vp.Product.UnitOfMeasure))
	}
	return out, nil
}

// ReplayVariant reconstruye el stock de una variante sumando su ledger en orden cronológico
// y lo compara con el stock materializado.
func (uc *RegisterMovementUseCase) ReplayVariant(ctx context.Context, variantID string) (*dto.LedgerReplayDTO, error) {
	ctx, span := tracer.Start(ctx, "inventory.ReplayVariant")
	defer span.End()

	if variantID == "" {
		return nil, domain.ErrInvalidInput
	}
	vp, err := uc.variantRepo.GetWithProduct(ctx, variantID)
	if err != nil {
		return nil, uc.persistence("replayVariant", err, variantID)
	}
	if vp == nil {
		return nil, domain.ErrNotFound
	}
	movements, err := uc.movRepo.ListForReplay(ctx, variantID)
	if err != nil {
		return nil, uc.persistence("replayVariant", err, variantID)
	}

	uom := vp.Product.UnitOfMeasure
	out := &dto.LedgerReplayDTO{
		VariantID:     variantID,
		UnitOfMeasure: string(uom),
		CurrentStock:  vp.Variant.Stock,
		Entries:       make([]dto.ReplayEntryDTO, 0, len(movements)),
	}
	var balance int64
	for _, m := range movements {
		balance += m.Quantity
		out.Entries = append(out.Entries, dto.ReplayEntryDTO{
			MovementDTO: toMovementDTO(m, uom),
			Balance:     balance,
		})
	}
	out.ReplayedStock = balance
	out.Consistent = balance == vp.Variant.Stock
	if !out.Consistent {
		uc.log.Operation("replayVariant").Warn().
			Str("variant_id", variantID).
			Int64("stock", vp.Variant.Stock).
			Int64("ledger_sum", balance).
			Msg("stock no coincide con el ledger")
	}
	return out, nil
}

// AuditLedger lista las variantes cuyo stock materializado difiere de la suma de sus movimientos.
func (uc *RegisterMovementUseCase) AuditLedger(ctx context.Context) (*dto.LedgerAuditDTO, error) {
	ctx, span := tracer.Start(ctx, "inventory.AuditLedger")
	defer span.End()

	drifts, err := uc.movRepo.ListStockDrift(ctx)
	if err != nil {
		return nil, uc.persistence("auditLedger", err, "")
	}
	out := &dto.LedgerAuditDTO{
		Consistent: len(drifts) == 0,
		Drifts:     make([]dto.StockDriftDTO, 0, len(drifts)),
	}
	for _, d := range drifts {
		out.Drifts = append(out.Drifts, dto.StockDriftDTO{
			VariantID: d.VariantID,
			SKU:       d.SKU,
			Stock:     d.Stock,
			LedgerSum: d.LedgerSum,
			Drift:     d.Stock - d.LedgerSum,
		})
	}
	if !out.Consistent {
		uc.log.Operation("auditLedger").Warn().Int("variants", len(drifts)).Msg("variantes con stock descuadrado")
	}
	return out, nil
}

func (uc *RegisterMovementUseCase) persistence(op string, err error, variantID string) error {
	err = domain.Persistence(op, err)
	if errors.Is(err, domain.ErrPersistence) {
		uc.logFailure(op, err, variantID)
	}
	return err
}

func toMovementDTO(m *entity.StockMovement, uom entity.UnitOfMeasure) dto.MovementDTO {
	return dto.MovementDTO{
		ID:              m.ID,
		VariantID:       m.VariantID,
		Type:            string(m.Type),
		Quantity:        m.Quantity,
		DisplayQuantity: inventory.FromBaseUnits(m.Quantity, uom),
		Reason:          m.Reason,
		UserID:          m.UserID,
		CreatedAt:       m.CreatedAt,
	}
}
