package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta.
const (
	SaleStatusCompleted = "COMPLETED"
	SaleStatusCancelled = "CANCELLED"
)

// Estados de pago de una venta.
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
)

// Sale cabecera de una venta del punto de venta.
type Sale struct {
	ID            string
	Status        string
	PaymentStatus string
	Total         decimal.Decimal
	UserID        string
	CreatedAt     time.Time
	CancelledAt   *time.Time
}

// GeneratesDebt indica si la venta genera deuda de consignación con los dueños.
func (s *Sale) GeneratesDebt() bool {
	return s.Status == SaleStatusCompleted && s.PaymentStatus == PaymentStatusPaid
}

// SaleItem línea de venta. CostAtSale y PriceAtSale quedan congelados al vender.
// SettledQuantity es el único campo mutable y solo avanza al liquidar con el dueño.
type SaleItem struct {
	ID              string
	SaleID          string
	VariantID       string
	Quantity        int64
	CostAtSale      decimal.Decimal
	PriceAtSale     decimal.Decimal
	SettledQuantity int64
}

// Pending cantidad vendida aún no liquidada.
func (i *SaleItem) Pending() int64 {
	return i.Quantity - i.SettledQuantity
}
