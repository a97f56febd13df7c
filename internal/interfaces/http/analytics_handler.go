package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Consignacion-api/internal/application/analytics"
	"github.com/jhoicas/Consignacion-api/internal/application/dto"
)

// AnalyticsHandler maneja los reportes financieros.
type AnalyticsHandler struct {
	uc *analytics.FinancialReportUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *analytics.FinancialReportUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// monthQuery lee ?year=&month=. Sin parámetros toma el mes en curso.
func monthQuery(c *fiber.Ctx) (int, int, error) {
	var req dto.MonthRequest
	if err := bindQuery(c, &req); err != nil {
		return 0, 0, err
	}
	if req.Year == 0 && req.Month == 0 {
		now := time.Now().UTC()
		return now.Year(), int(now.Month()), nil
	}
	return req.Year, req.Month, nil
}

// MonthlyReport godoc
// @Summary      Estado de resultados del mes
// @Description  Ingresos de ventas completadas, costo de lo vendido y utilidad neta.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        year   query  int  false  "Año (por defecto el actual)"
// @Param        month  query  int  false  "Mes 1-12 (por defecto el actual)"
// @Success      200  {object}  dto.MonthlyReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reports/monthly [get]
func (h *AnalyticsHandler) MonthlyReport(c *fiber.Ctx) error {
	year, month, err := monthQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	report, err := h.uc.MonthlyReport(c.UserContext(), year, month)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}

// InventoryValuation godoc
// @Summary      Valor del inventario actual
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventoryValuationDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reports/inventory-valuation [get]
func (h *AnalyticsHandler) InventoryValuation(c *fiber.Ctx) error {
	report, err := h.uc.InventoryValuation(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}

// SalesByCategory godoc
// @Summary      Ganancia por categoría en el mes
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        year   query  int  false  "Año (por defecto el actual)"
// @Param        month  query  int  false  "Mes 1-12 (por defecto el actual)"
// @Success      200  {object}  dto.SalesByCategoryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/sales-by-category [get]
func (h *AnalyticsHandler) SalesByCategory(c *fiber.Ctx) error {
	year, month, err := monthQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	report, err := h.uc.SalesByCategory(c.UserContext(), year, month)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}
