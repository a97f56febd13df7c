package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceAdjustment ajuste manual al saldo de un dueño (corrección, descuento, anticipo).
// Amount con signo: negativo es un crédito a favor de la tienda. Se aplica una sola vez.
type BalanceAdjustment struct {
	ID           string
	OwnerID      string
	Amount       decimal.Decimal
	Description  string
	IsApplied    bool
	SettlementID string
	AppliedAt    *time.Time
	CreatedBy    string
	CreatedAt    time.Time
}

// Settlement pago a un dueño que liquida líneas vendidas y ajustes pendientes.
type Settlement struct {
	ID          string
	OwnerID     string
	TotalAmount decimal.Decimal
	UserID      string
	CreatedAt   time.Time
}

// SettlementItem cantidad de una línea de venta liquidada en un pago.
type SettlementItem struct {
	ID           string
	SettlementID string
	SaleItemID   string
	Quantity     int64
	CostAtSale   decimal.Decimal
	Amount       decimal.Decimal
}
