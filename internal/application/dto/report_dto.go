package dto

import "github.com/shopspring/decimal"

// ── Query parameters ──────────────────────────────────────────────────────────

// MonthRequest parámetros ?year=&month= de los reportes mensuales.
type MonthRequest struct {
	Year  int `query:"year"`
	Month int `query:"month"`
}

// ── Reportes ──────────────────────────────────────────────────────────────────

// MonthlyReportDTO estado de resultados simplificado de un mes.
type MonthlyReportDTO struct {
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	Revenue        decimal.Decimal `json:"revenue"`          // suma de sales.total de ventas COMPLETED
	COGS           decimal.Decimal `json:"cogs"`             // costo de lo vendido, por kg o por unidad
	NetIncome      decimal.Decimal `json:"net_income"`       // Revenue - COGS
	TotalUnitsSold int             `json:"total_units_sold"` // número de líneas vendidas
}

// InventoryValuationDTO valor del inventario al costo y al precio de venta.
type InventoryValuationDTO struct {
	TotalCostValue   decimal.Decimal `json:"total_cost_value"`
	TotalRetailValue decimal.Decimal `json:"total_retail_value"`
	PotentialProfit  decimal.Decimal `json:"potential_profit"` // Retail - Cost
	TotalStock       int64           `json:"total_stock"`      // suma cruda en unidad base (mezcla unidades y gramos)
	VariantCount     int             `json:"variant_count"`
}

// CategorySalesDTO ganancia bruta de una categoría en el mes.
type CategorySalesDTO struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Revenue      decimal.Decimal `json:"revenue"`
	Total        decimal.Decimal `json:"total"` // Revenue - costo
}

// SalesByCategoryDTO ranking de categorías por ganancia.
type SalesByCategoryDTO struct {
	Year       int                `json:"year"`
	Month      int                `json:"month"`
	Categories []CategorySalesDTO `json:"categories"`
}
