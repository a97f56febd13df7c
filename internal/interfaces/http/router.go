package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/Consignacion-api/internal/application/analytics"
	"github.com/jhoicas/Consignacion-api/internal/application/consignment"
	"github.com/jhoicas/Consignacion-api/internal/application/inventory"
	"github.com/jhoicas/Consignacion-api/internal/application/sales"
	"github.com/jhoicas/Consignacion-api/pkg/jwt"
	"github.com/jhoicas/Consignacion-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger      *inventory.RegisterMovementUseCase
	Sales       *sales.SaleUseCase
	Consignment *consignment.BalanceUseCase
	Reports     *analytics.FinancialReportUseCase
	JWTSecret   string
	ServiceName string
	Log         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(requestid.New(), Tracing(), RequestLogger(deps.Log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	staff := RequireRole(jwt.RoleAdmin, jwt.RoleCashier)
	adminOnly := RequireRole(jwt.RoleAdmin)

	// Ledger de inventario
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	inv := api.Group("/inventory")
	inv.Post("/movements", staff, inventoryHandler.RecordMovement)
	inv.Get("/variants/:id/movements", staff, inventoryHandler.ListMovements)
	inv.Get("/variants/:id/replay", staff, inventoryHandler.Replay)
	inv.Get("/audit", adminOnly, inventoryHandler.Audit)

	// Ventas
	salesHandler := NewSalesHandler(deps.Sales)
	sl := api.Group("/sales", staff)
	sl.Post("/", salesHandler.Checkout)
	sl.Post("/:id/cancel", salesHandler.Cancel)
	sl.Post("/:id/pay", salesHandler.MarkPaid)

	// Consignación: solo admin liquida o ajusta saldos
	consignmentHandler := NewConsignmentHandler(deps.Consignment)
	owners := api.Group("/owners", adminOnly)
	owners.Get("/:id/balance", consignmentHandler.Balance)
	owners.Post("/:id/settlements", consignmentHandler.Settle)
	owners.Get("/:id/settlements", consignmentHandler.ListSettlements)
	owners.Post("/:id/adjustments", consignmentHandler.CreateAdjustment)
	api.Get("/settlements/:id", adminOnly, consignmentHandler.GetSettlement)

	// Reportes
	analyticsHandler := NewAnalyticsHandler(deps.Reports)
	reports := api.Group("/reports", adminOnly)
	reports.Get("/monthly", analyticsHandler.MonthlyReport)
	reports.Get("/inventory-valuation", analyticsHandler.InventoryValuation)
	reports.Get("/sales-by-category", analyticsHandler.SalesByCategory)
}
