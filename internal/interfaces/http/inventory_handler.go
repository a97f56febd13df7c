package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Consignacion-api/internal/application/dto"
	"github.com/jhoicas/Consignacion-api/internal/application/inventory"
	"github.com/jhoicas/Consignacion-api/internal/domain"
)

const dateLayout = "2006-01-02"

// InventoryHandler maneja el ledger de stock: movimientos manuales, historial, replay y auditoría.
type InventoryHandler struct {
	uc *inventory.RegisterMovementUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// RecordMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  ENTRY, RETURN, ADJUSTMENT u OWNER_WITHDRAWAL. Quantity en unidades o kg; unit_cost solo en ENTRY.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "variant_id, type, quantity, reason, unit_cost"
// @Success      201   {object}  dto.MovementDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.RecordMovementRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.RecordMovementFromRequest(c.UserContext(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Historial de movimientos de una variante
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la variante"
// @Param        from    query  string  false  "Desde (YYYY-MM-DD, inclusive)"
// @Param        to      query  string  false  "Hasta (YYYY-MM-DD, exclusivo)"
// @Param        limit   query  int     false  "Máximo de filas (por defecto 50)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/variants/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var q dto.MovementListRequest
	if err := bindQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	from, err := parseDate("from", q.From)
	if err != nil {
		return writeError(c, err)
	}
	to, err := parseDate("to", q.To)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListMovements(c.UserContext(), c.Params("id"), from, to, q.Limit, q.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Replay godoc
// @Summary      Reconstruir el stock desde el ledger
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la variante"
// @Success      200  {object}  dto.LedgerReplayDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/variants/{id}/replay [get]
func (h *InventoryHandler) Replay(c *fiber.Ctx) error {
	out, err := h.uc.ReplayVariant(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Audit godoc
// @Summary      Conciliar stock materializado contra el ledger
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LedgerAuditDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/audit [get]
func (h *InventoryHandler) Audit(c *fiber.Ctx) error {
	out, err := h.uc.AuditLedger(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// parseDate interpreta YYYY-MM-DD en UTC; vacío devuelve nil.
func parseDate(name, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe tener formato YYYY-MM-DD", domain.ErrInvalidInput, name)
	}
	return &t, nil
}
