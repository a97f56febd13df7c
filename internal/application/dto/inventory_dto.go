package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMovementRequest body para POST /api/inventory/movements.
// Quantity en unidades (UNIT) o kilogramos (GRAM); UnitCost por unidad o por kg, solo en ENTRY.
type RecordMovementRequest struct {
	VariantID string           `json:"variant_id" validate:"required"`
	Type      string           `json:"type" validate:"required"`
	Quantity  float64          `json:"quantity" validate:"gt=0"`
	Reason    string           `json:"reason,omitempty" validate:"max=500"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
}

// MovementListRequest query de GET /api/inventory/variants/:id/movements.
type MovementListRequest struct {
	PageRequest
	From string `query:"from"` // YYYY-MM-DD inclusive
	To   string `query:"to"`   // YYYY-MM-DD exclusive
}

// MovementDTO movimiento del ledger. Quantity en unidad base; DisplayQuantity en unidades o kg.
type MovementDTO struct {
	ID              string          `json:"id"`
	VariantID       string          `json:"variant_id"`
	Type            string          `json:"type"`
	Quantity        int64           `json:"quantity"`
	DisplayQuantity decimal.Decimal `json:"display_quantity"`
	Reason          string          `json:"reason,omitempty"`
	UserID          string          `json:"user_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

// MovementListResponse historial paginado de una variante.
type MovementListResponse struct {
	Items []MovementDTO `json:"items"`
	Page  PageResponse  `json:"page"`
}

// ReplayEntryDTO movimiento con el saldo acumulado después de aplicarlo.
type ReplayEntryDTO struct {
	MovementDTO
	Balance int64 `json:"balance"`
}

// LedgerReplayDTO stock reconstruido desde el ledger comparado con el materializado.
type LedgerReplayDTO struct {
	VariantID     string           `json:"variant_id"`
	UnitOfMeasure string           `json:"unit_of_measure"`
	CurrentStock  int64            `json:"current_stock"`
	ReplayedStock int64            `json:"replayed_stock"`
	Consistent    bool             `json:"consistent"`
	Entries       []ReplayEntryDTO `json:"entries"`
}

// StockDriftDTO variante cuyo stock no coincide con la suma de sus movimientos.
type StockDriftDTO struct {
	VariantID string `json:"variant_id"`
	SKU       string `json:"sku"`
	Stock     int64  `json:"stock"`
	LedgerSum int64  `json:"ledger_sum"`
	Drift     int64  `json:"drift"` // Stock - LedgerSum
}

// LedgerAuditDTO resultado de la conciliación stock vs ledger.
type LedgerAuditDTO struct {
	Consistent bool            `json:"consistent"`
	Drifts     []StockDriftDTO `json:"drifts"`
}
