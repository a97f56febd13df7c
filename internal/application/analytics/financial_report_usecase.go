// Package analytics contiene los reportes financieros: estado de resultados mensual,
// valorización del inventario y ventas por categoría. Todos son de solo lectura.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Consignacion-api/internal/application/dto"
	"github.com/jhoicas/Consignacion-api/internal/domain"
	"github.com/jhoicas/Consignacion-api/internal/domain/inventory"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
	"github.com/jhoicas/Consignacion-api/pkg/logger"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/jhoicas/Consignacion-api/internal/application/analytics")

const minReportYear = 2000

// FinancialReportUseCase genera los reportes financieros.
//
// Fuente de datos: ReportRepository (consultas read-only). Toda multiplicación cantidad × precio
// pasa por inventory.LineAmount para respetar la convención por kg de los productos GRAM.
type FinancialReportUseCase struct {
	reportRepo repository.ReportRepository
	cache      ReportCache
	cacheTTL   time.Duration
	log        *logger.Logger
	now        func() time.Time
	loc        *time.Location
}

// NewFinancialReportUseCase construye el caso de uso. cache puede ser nil (sin caché).
// Los meses se cortan en loc (nil = UTC).
func NewFinancialReportUseCase(reportRepo repository.ReportRepository, cache ReportCache, cacheTTL time.Duration, loc *time.Location, log *logger.Logger) *FinancialReportUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &FinancialReportUseCase{
		reportRepo: reportRepo,
		cache:      cache,
		cacheTTL:   cacheTTL,
		log:        log.Component("analytics"),
		now:        time.Now,
		loc:        loc,
	}
}

// monthRange valida year/month y devuelve el período semiabierto [from, to).
func (uc *FinancialReportUseCase) monthRange(year, month int) (time.Time, time.Time, error) {
	if year < minReportYear || month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: período %04d-%02d", domain.ErrInvalidInput, year, month)
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, uc.loc)
	return from, from.AddDate(0, 1, 0), nil
}

// closed indica si el mes terminó antes del mes en curso (solo esos se cachean).
func (uc *FinancialReportUseCase) closed(to time.Time) bool {
	return !uc.now().In(uc.loc).Before(to)
}

func (uc *FinancialReportUseCase) cacheEnabled() bool {
	return uc.cache != nil && uc.cacheTTL > 0
}

// MonthlyReport estado de resultados del mes:
//
//	revenue   = Σ total de ventas COMPLETED del mes
//	cogs      = Σ LineAmount(quantity, costAtSale) de sus líneas
//	netIncome = revenue - cogs
func (uc *FinancialReportUseCase) MonthlyReport(ctx context.Context, year, month int) (*dto.MonthlyReportDTO, error) {
	ctx, span := tracer.Start(ctx, "analytics.MonthlyReport", trace.WithAttributes(
		attribute.Int("report.year", year), attribute.Int("report.month", month),
	))
	defer span.End()

	from, to, err := uc.monthRange(year, month)
	if err != nil {
		return nil, uc.fail(span, "monthlyReport", err)
	}
	closed := uc.closed(to)
	if closed && uc.cacheEnabled() {
		if cached, ok, err := uc.cache.GetMonthly(ctx, year, month); err != nil {
			uc.log.Operation("monthlyReport").Warn().Err(err).Msg("caché de reportes no disponible")
		} else if ok {
			span.SetAttributes(attribute.Bool("report.cache_hit", true))
			return cached, nil
		}
	}

	// Ingresos y líneas vendidas salen de la misma foto: revenue y cogs cubren las mismas ventas.
	var revenue decimal.Decimal
	var lines []repository.SoldLine
	err = uc.reportRepo.ReadSnapshot(ctx, func(repo repository.ReportRepository) error {
		var err error
		if revenue, err = repo.GetSalesRevenue(ctx, from, to); err != nil {
			return err
		}
		lines, err = repo.ListSoldLines(ctx, from, to)
		return err
	})
	if err != nil {
		return nil, uc.fail(span, "monthlyReport", err)
	}

	cogs := decimal.Zero
	for _, l := range lines {
		cogs = cogs.Add(inventory.LineAmount(l.Quantity, l.CostAtSale, l.UnitOfMeasure))
	}
	report := &dto.MonthlyReportDTO{
		Year:           year,
		Month:          month,
		Revenue:        inventory.Money(revenue),
		COGS:           inventory.Money(cogs),
		TotalUnitsSold: len(lines),
	}
	report.NetIncome = report.Revenue.Sub(report.COGS)

	if closed && uc.cacheEnabled() {
		if err := uc.cache.SetMonthly(ctx, report, uc.cacheTTL); err != nil {
			uc.log.Operation("monthlyReport").Warn().Err(err).Msg("no se pudo guardar el reporte en caché")
		}
	}
	return report, nil
}

// InventoryValuation valor del stock actual al costo y al precio de venta.
// TotalStock es la suma cruda en unidad base (mezcla unidades y gramos); es solo diagnóstico.
func (uc *FinancialReportUseCase) InventoryValuation(ctx context.Context) (*dto.InventoryValuationDTO, error) {
	ctx, span := tracer.Start(ctx, "analytics.InventoryValuation")
	defer span.End()

	rows, err := uc.reportRepo.ListStockValuation(ctx)
	if err != nil {
		return nil, uc.fail(span, "inventoryValuation", err)
	}
	cost, retail := decimal.Zero, decimal.Zero
	var totalStock int64
	for _, r := range rows {
		cost = cost.Add(inventory.LineAmount(r.Stock, r.CostPrice, r.UnitOfMeasure))
		retail = retail.Add(inventory.LineAmount(r.Stock, r.SalePrice, r.UnitOfMeasure))
		totalStock += r.Stock
	}
	out := &dto.InventoryValuationDTO{
		TotalCostValue:   inventory.Money(cost),
		TotalRetailValue: inventory.Money(retail),
		TotalStock:       totalStock,
		VariantCount:     len(rows),
	}
	out.PotentialProfit = out.TotalRetailValue.Sub(out.TotalCostValue)
	return out, nil
}

// SalesByCategory ganancia bruta por categoría en el mes, de mayor a menor (empates por nombre).
func (uc *FinancialReportUseCase) SalesByCategory(ctx context.Context, year, month int) (*dto.SalesByCategoryDTO, error) {
	ctx, span := tracer.Start(ctx, "analytics.SalesByCategory", trace.WithAttributes(
		attribute.Int("report.year", year), attribute.Int("report.month", month),
	))
	defer span.End()

	from, to, err := uc.monthRange(year, month)
	if err != nil {
		return nil, uc.fail(span, "salesByCategory", err)
	}
	closed := uc.closed(to)
	if closed && uc.cacheEnabled() {
		if cached, ok, err := uc.cache.GetSalesByCategory(ctx, year, month); err != nil {
			uc.log.Operation("salesByCategory").Warn().Err(err).Msg("caché de reportes no disponible")
		} else if ok {
			span.SetAttributes(attribute.Bool("report.cache_hit", true))
			return cached, nil
		}
	}

	lines, err := uc.reportRepo.ListSoldLines(ctx, from, to)
	if err != nil {
		return nil, uc.fail(span, "salesByCategory", err)
	}

	byCategory := map[string]*dto.CategorySalesDTO{}
	for _, l := range lines {
		c, ok := byCategory[l.CategoryID]
		if !ok {
			c = &dto.CategorySalesDTO{CategoryID: l.CategoryID, CategoryName: l.CategoryName, Revenue: decimal.Zero, Total: decimal.Zero}
			byCategory[l.CategoryID] = c
		}
		revenue := inventory.LineAmount(l.Quantity, l.PriceAtSale, l.UnitOfMeasure)
		cost := inventory.LineAmount(l.Quantity, l.CostAtSale, l.UnitOfMeasure)
		c.Revenue = c.Revenue.Add(revenue)
		c.Total = c.Total.Add(revenue.Sub(cost))
	}

	out := &dto.SalesByCategoryDTO{Year: year, Month: month, Categories: make([]dto.CategorySalesDTO, 0, len(byCategory))}
	for _, c := range byCategory {
		c.Revenue = inventory.Money(c.Revenue)
		c.Total = inventory.Money(c.Total)
		out.Categories = append(out.Categories, *c)
	}
	sort.Slice(out.Categories, func(i, j int) bool {
		a, b := out.Categories[i], out.Categories[j]
		if !a.Total.Equal(b.Total) {
			return a.Total.GreaterThan(b.Total)
		}
		return a.CategoryName < b.CategoryName
	})

	if closed && uc.cacheEnabled() {
		if err := uc.cache.SetSalesByCategory(ctx, out, uc.cacheTTL); err != nil {
			uc.log.Operation("salesByCategory").Warn().Err(err).Msg("no se pudo guardar el reporte en caché")
		}
	}
	return out, nil
}

// InvalidateMonth descarta los reportes cacheados del mes que contiene at (cortado en loc).
// Se llama después de confirmar una anulación; una falla de la caché solo se registra.
func (uc *FinancialReportUseCase) InvalidateMonth(ctx context.Context, at time.Time) {
	if uc.cache == nil {
		return
	}
	local := at.In(uc.loc)
	if err := uc.cache.Invalidate(ctx, local.Year(), int(local.Month())); err != nil {
		uc.log.Operation("invalidateMonth").Warn().Err(err).
			Int("year", local.Year()).Int("month", int(local.Month())).
			Msg("no se pudo invalidar la caché de reportes")
	}
}

func (uc *FinancialReportUseCase) fail(span trace.Span, op string, err error) error {
	err = domain.Persistence(op, err)
	if errors.Is(err, domain.ErrPersistence) {
		uc.log.Operation(op).Error().Err(err).Msg("falla de persistencia")
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
