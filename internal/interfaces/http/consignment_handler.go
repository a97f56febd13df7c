package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Consignacion-api/internal/application/consignment"
	"github.com/jhoicas/Consignacion-api/internal/application/dto"
)

// ConsignmentHandler saldo de dueños, liquidaciones y ajustes manuales.
type ConsignmentHandler struct {
	uc *consignment.BalanceUseCase
}

// NewConsignmentHandler construye el handler.
func NewConsignmentHandler(uc *consignment.BalanceUseCase) *ConsignmentHandler {
	return &ConsignmentHandler{uc: uc}
}

// Balance godoc
// @Summary      Saldo pendiente con un dueño
// @Description  Líneas vendidas y pagadas sin liquidar más ajustes sin aplicar.
// @Tags         consignment
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del dueño"
// @Success      200  {object}  dto.OwnerBalanceDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/owners/{id}/balance [get]
func (h *ConsignmentHandler) Balance(c *fiber.Ctx) error {
	out, err := h.uc.ComputeOwnerBalance(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Settle godoc
// @Summary      Liquidar saldo a un dueño
// @Description  Liquida las cantidades y ajustes seleccionados en una transacción.
// @Tags         consignment
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del dueño"
// @Param        body  body  dto.SettleRequest   true  "líneas (cantidad en unidad base) y ajustes"
// @Success      201   {object}  dto.SettlementDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/owners/{id}/settlements [post]
func (h *ConsignmentHandler) Settle(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.SettleRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	lines := make([]consignment.SettleLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, consignment.SettleLine{SaleItemID: l.SaleItemID, Quantity: l.Quantity})
	}
	out, err := h.uc.SettleOwnerBalance(c.UserContext(), consignment.SettleInput{
		OwnerID:       c.Params("id"),
		UserID:        userID,
		Lines:         lines,
		AdjustmentIDs: in.AdjustmentIDs,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListSettlements godoc
// @Summary      Historial de liquidaciones de un dueño
// @Tags         consignment
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del dueño"
// @Param        limit   query  int     false  "Máximo de filas (por defecto 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.SettlementListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/owners/{id}/settlements [get]
func (h *ConsignmentHandler) ListSettlements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ListSettlements(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetSettlement godoc
// @Summary      Detalle de una liquidación
// @Tags         consignment
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la liquidación"
// @Success      200  {object}  dto.SettlementDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/settlements/{id} [get]
func (h *ConsignmentHandler) GetSettlement(c *fiber.Ctx) error {
	out, err := h.uc.GetSettlement(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateAdjustment godoc
// @Summary      Crear ajuste manual de saldo
// @Description  Monto positivo aumenta la deuda con el dueño; negativo la reduce.
// @Tags         consignment
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID del dueño"
// @Param        body  body  dto.CreateAdjustmentRequest   true  "monto y descripción"
// @Success      201   {object}  dto.AdjustmentDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/owners/{id}/adjustments [post]
func (h *ConsignmentHandler) CreateAdjustment(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.CreateAdjustmentRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CreateAdjustment(c.UserContext(), c.Params("id"), in.Amount, in.Description, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
