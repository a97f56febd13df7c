package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SettleableItem línea de venta con los datos que la liquidación necesita para validarla y valorizarla.
type SettleableItem struct {
	Item          entity.SaleItem
	OwnerID       string
	UnitOfMeasure entity.UnitOfMeasure
}

// PendingSaleItem línea vendida y pagada de un dueño con cantidad aún no liquidada.
type PendingSaleItem struct {
	SaleItemID      string
	SaleID          string
	VariantID       string
	VariantName     string
	ProductName     string
	UnitOfMeasure   entity.UnitOfMeasure
	Quantity        int64
	SettledQuantity int64
	CostAtSale      decimal.Decimal
	SoldAt          time.Time
}

// SaleRepository define el puerto de persistencia de ventas y sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate bloquea la venta en modo exclusivo (anulación).
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	// GetForShare bloquea la venta en modo compartido (liquidación de sus líneas).
	GetForShare(ctx context.Context, id string) (*entity.Sale, error)
	ListItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error)
	// Cancel marca la venta como anulada solo si sigue COMPLETED.
	Cancel(ctx context.Context, id string, at time.Time) (bool, error)
	// MarkPaid pasa el pago de PENDING a PAID solo si la venta sigue COMPLETED.
	MarkPaid(ctx context.Context, id string) (bool, error)

	// GetSettleableItem devuelve la línea con dueño y unidad de medida, o nil si no existe.
	GetSettleableItem(ctx context.Context, saleItemID string) (*SettleableItem, error)
	// AdvanceSettled suma qty a settled_quantity solo si settled_quantity + qty <= quantity.
	AdvanceSettled(ctx context.Context, saleItemID string, qty int64) (bool, error)
	// ListPendingByOwner lista líneas con saldo pendiente de ventas COMPLETED y PAID del dueño.
	ListPendingByOwner(ctx context.Context, ownerID string) ([]PendingSaleItem, error)
}
