package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Consignacion-api/internal/application/dto"
	"github.com/jhoicas/Consignacion-api/internal/application/sales"
)

// SalesHandler checkout, anulación y cobro de ventas.
type SalesHandler struct {
	uc *sales.SaleUseCase
}

// NewSalesHandler construye el handler.
func NewSalesHandler(uc *sales.SaleUseCase) *SalesHandler {
	return &SalesHandler{uc: uc}
}

// Checkout godoc
// @Summary      Registrar una venta
// @Description  Descuenta stock de cada línea y congela costo y precio. Si una línea no tiene stock no se vende nada.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "líneas y estado de pago (PAID por defecto)"
// @Success      201   {object}  dto.SaleDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SalesHandler) Checkout(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.CheckoutRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	lines := make([]sales.SaleLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, sales.SaleLine{VariantID: l.VariantID, RawQuantity: l.Quantity})
	}
	out, err := h.uc.Checkout(c.UserContext(), sales.SaleInput{
		UserID:        userID,
		PaymentStatus: in.PaymentStatus,
		Lines:         lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Cancel godoc
// @Summary      Anular una venta
// @Description  Devuelve el stock con movimientos SALE_CANCELLED. No se puede si alguna línea ya fue liquidada.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/cancel [post]
func (h *SalesHandler) Cancel(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CancelSale(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// MarkPaid godoc
// @Summary      Marcar una venta pendiente como pagada
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/pay [post]
func (h *SalesHandler) MarkPaid(c *fiber.Ctx) error {
	out, err := h.uc.MarkPaid(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
