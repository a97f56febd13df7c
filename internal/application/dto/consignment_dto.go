package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingLineDTO línea vendida y pagada con cantidad pendiente de liquidar al dueño.
type PendingLineDTO struct {
	SaleItemID      string          `json:"sale_item_id"`
	SaleID          string          `json:"sale_id"`
	VariantID       string          `json:"variant_id"`
	VariantName     string          `json:"variant_name"`
	ProductName     string          `json:"product_name"`
	UnitOfMeasure   string          `json:"unit_of_measure"`
	PendingQuantity int64           `json:"pending_quantity"`
	DisplayQuantity decimal.Decimal `json:"display_quantity"`
	CostAtSale      decimal.Decimal `json:"cost_at_sale"`
	Amount          decimal.Decimal `json:"amount"`
	SoldAt          time.Time       `json:"sold_at"`
}

// AdjustmentDTO ajuste manual de saldo.
type AdjustmentDTO struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"owner_id"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	IsApplied    bool            `json:"is_applied"`
	SettlementID string          `json:"settlement_id,omitempty"`
	AppliedAt    *time.Time      `json:"applied_at,omitempty"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
}

// OwnerBalanceDTO respuesta de GET /api/owners/:id/balance.
type OwnerBalanceDTO struct {
	OwnerID             string           `json:"owner_id"`
	DebtFromSales       decimal.Decimal  `json:"debt_from_sales"`
	DebtFromAdjustments decimal.Decimal  `json:"debt_from_adjustments"`
	TotalNetDebt        decimal.Decimal  `json:"total_net_debt"`
	PendingItemsCount   int64            `json:"pending_items_count"` // suma de cantidades pendientes en unidad base
	PendingLines        []PendingLineDTO `json:"pending_lines"`
	PendingAdjustments  []AdjustmentDTO  `json:"pending_adjustments"`
}

// SettleLineRequest cantidad de una línea a liquidar, en unidad base.
type SettleLineRequest struct {
	SaleItemID string `json:"sale_item_id" validate:"required"`
	Quantity   int64  `json:"quantity" validate:"gt=0"`
}

// SettleRequest body para POST /api/owners/:id/settlements.
type SettleRequest struct {
	Lines         []SettleLineRequest `json:"lines" validate:"dive"`
	AdjustmentIDs []string            `json:"adjustment_ids" validate:"dive,required"`
}

// CreateAdjustmentRequest body para POST /api/owners/:id/adjustments.
type CreateAdjustmentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"required,max=500"`
}

// SettlementItemDTO línea liquidada.
type SettlementItemDTO struct {
	ID         string          `json:"id"`
	SaleItemID string          `json:"sale_item_id"`
	Quantity   int64           `json:"quantity"`
	CostAtSale decimal.Decimal `json:"cost_at_sale"`
	Amount     decimal.Decimal `json:"amount"`
}

// SettlementDTO liquidación con sus líneas y ajustes aplicados.
type SettlementDTO struct {
	ID          string              `json:"id"`
	OwnerID     string              `json:"owner_id"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	UserID      string              `json:"user_id"`
	CreatedAt   time.Time           `json:"created_at"`
	Items       []SettlementItemDTO `json:"items"`
	Adjustments []AdjustmentDTO     `json:"adjustments"`
}

// SettlementListResponse historial paginado de liquidaciones de un dueño.
type SettlementListResponse struct {
	Items []SettlementDTO `json:"items"`
	Page  PageResponse    `json:"page"`
}
