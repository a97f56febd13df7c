package inventory

import (
	"context"

	"github.com/jhoicas/Consignacion-api/internal/application/dto"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
)

// RecordMovementFromRequest adapta el request HTTP al caso de uso RecordMovement(ctx, MovementInput).
// Usar desde handlers HTTP con el userID del token.
func (uc *RegisterMovementUseCase) RecordMovementFromRequest(ctx context.Context, userID string, in dto.RecordMovementRequest) (*dto.MovementDTO, error) {
	mov, uom, err := uc.record(ctx, MovementInput{
		VariantID:   in.VariantID,
		RawQuantity: in.Quantity,
		Type:        entity.MovementType(in.Type),
		Reason:      in.Reason,
		UserID:      userID,
		UnitCost:    in.UnitCost,
	})
	if err != nil {
		return nil, err
	}
	out := toMovementDTO(mov, uom)
	return &out, nil
}
