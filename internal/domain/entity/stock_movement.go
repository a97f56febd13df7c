package entity

import "time"

// MovementType tipo de movimiento del ledger de stock.
type MovementType string

// Tipos de movimiento de stock.
const (
	MovementTypeEntry           MovementType = "ENTRY"            // ingreso de mercadería del dueño
	MovementTypeSale            MovementType = "SALE"             // salida por venta
	MovementTypeSaleCancelled   MovementType = "SALE_CANCELLED"   // reingreso por venta anulada
	MovementTypeAdjustment      MovementType = "ADJUSTMENT"       // merma o pérdida
	MovementTypeOwnerWithdrawal MovementType = "OWNER_WITHDRAWAL" // el dueño retira mercadería
	MovementTypeReturn          MovementType = "RETURN"           // devolución de un cliente
)

// StockMovement registro inmutable del ledger. Quantity es el delta con signo en unidad base.
// Para cada variante, la suma de sus movimientos es igual a ProductVariant.Stock.
type StockMovement struct {
	ID        string
	VariantID string
	Quantity  int64
	Type      MovementType
	Reason    string
	UserID    string
	CreatedAt time.Time
}
