package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest línea de POST /api/sales. Quantity en unidades o kg.
type SaleLineRequest struct {
	VariantID string  `json:"variant_id" validate:"required"`
	Quantity  float64 `json:"quantity" validate:"gt=0"`
}

// CheckoutRequest body para POST /api/sales.
type CheckoutRequest struct {
	PaymentStatus string            `json:"payment_status" validate:"omitempty,oneof=PENDING PAID"`
	Lines         []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SaleItemDTO línea vendida con el costo y precio congelados.
type SaleItemDTO struct {
	ID              string          `json:"id"`
	VariantID       string          `json:"variant_id"`
	Quantity        int64           `json:"quantity"`
	DisplayQuantity decimal.Decimal `json:"display_quantity"`
	CostAtSale      decimal.Decimal `json:"cost_at_sale"`
	PriceAtSale     decimal.Decimal `json:"price_at_sale"`
	LineTotal       decimal.Decimal `json:"line_total"`
	SettledQuantity int64           `json:"settled_quantity"`
}

// SaleDTO venta con sus líneas.
type SaleDTO struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	Total         decimal.Decimal `json:"total"`
	UserID        string          `json:"user_id"`
	CreatedAt     time.Time       `json:"created_at"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	Items         []SaleItemDTO   `json:"items"`
}
