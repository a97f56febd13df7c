package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SoldLine línea de una venta COMPLETED con la unidad y la categoría del producto.
// Lo produce la DB; el caso de uso aplica la convención de costo por kg o por unidad.
type SoldLine struct {
	SaleItemID    string
	Quantity      int64
	CostAtSale    decimal.Decimal
	PriceAtSale   decimal.Decimal
	UnitOfMeasure entity.UnitOfMeasure
	CategoryID    string
	CategoryName  string
}

// StockValuationRow stock actual de una variante con sus precios vigentes.
type StockValuationRow struct {
	VariantID     string
	Stock         int64
	CostPrice     decimal.Decimal
	SalePrice     decimal.Decimal
	UnitOfMeasure entity.UnitOfMeasure
}

// ReportRepository define las consultas de lectura para los reportes financieros.
// Las implementaciones son read-only (no modifican datos).
type ReportRepository interface {
	// GetSalesRevenue suma el total de las ventas COMPLETED con fecha en [from, to).
	// Devuelve cero si no hay ventas en el período.
	GetSalesRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error)

	// ListSoldLines devuelve las líneas de las ventas COMPLETED con fecha en [from, to).
	ListSoldLines(ctx context.Context, from, to time.Time) ([]SoldLine, error)

	// ListStockValuation devuelve todas las variantes con su stock y precios.
	ListStockValuation(ctx context.Context) ([]StockValuationRow, error)

	// ReadSnapshot ejecuta fn con un repo cuyas consultas ven todas la misma foto de los datos.
	ReadSnapshot(ctx context.Context, fn func(repo ReportRepository) error) error
}
