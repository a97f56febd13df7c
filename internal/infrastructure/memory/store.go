// Package memory implementa los repositorios sobre un estado en memoria.
// Sirve para STORAGE_DRIVER=memory y para los tests de casos de uso.
//
// Cada transacción toma el lock de escritura, trabaja sobre una copia del estado y la publica
// solo si la función termina sin error: las transacciones son serializables y un fallo no deja rastro.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/jhoicas/Consignacion-api/internal/application/consignment"
	"github.com/jhoicas/Consignacion-api/internal/application/inventory"
	"github.com/jhoicas/Consignacion-api/internal/application/sales"
	"github.com/jhoicas/Consignacion-api/internal/domain/entity"
	"github.com/jhoicas/Consignacion-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner   = (*Store)(nil)
	_ sales.TxRunner       = (*Store)(nil)
	_ consignment.TxRunner = (*Store)(nil)
)

type state struct {
	owners          map[string]entity.Owner
	categories      map[string]entity.Category
	products        map[string]entity.Product
	variants        map[string]entity.ProductVariant
	movements       []entity.StockMovement
	sales           map[string]entity.Sale
	saleItems       map[string]entity.SaleItem
	saleItemOrder   []string
	adjustments     map[string]entity.BalanceAdjustment
	settlements     map[string]entity.Settlement
	settlementItems []entity.SettlementItem
}

func newState() *state {
	return &state{
		owners:      map[string]entity.Owner{},
		categories:  map[string]entity.Category{},
		products:    map[string]entity.Product{},
		variants:    map[string]entity.ProductVariant{},
		sales:       map[string]entity.Sale{},
		saleItems:   map[string]entity.SaleItem{},
		adjustments: map[string]entity.BalanceAdjustment{},
		settlements: map[string]entity.Settlement{},
	}
}

// clone copia el estado. Las entidades son valores; los punteros *time.Time nunca se mutan en sitio.
func (s *state) clone() *state {
	return &state{
		owners:          maps.Clone(s.owners),
		categories:      maps.Clone(s.categories),
		products:        maps.Clone(s.products),
		variants:        maps.Clone(s.variants),
		movements:       append([]entity.StockMovement(nil), s.movements...),
		sales:           maps.Clone(s.sales),
		saleItems:       maps.Clone(s.saleItems),
		saleItemOrder:   append([]string(nil), s.saleItemOrder...),
		adjustments:     maps.Clone(s.adjustments),
		settlements:     maps.Clone(s.settlements),
		settlementItems: append([]entity.SettlementItem(nil), s.settlementItems...),
	}
}

// access abstrae cómo un repo llega al estado: con locks (Store) o dentro de una transacción.
type access interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
}

// Store estado compartido protegido por un RWMutex.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) read(fn func(st *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

// write aplica fn sobre una copia y la publica si no hubo error (escrituras sueltas fuera de tx).
func (s *Store) write(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st.clone()
	if err := fn(next); err != nil {
		return err
	}
	s.st = next
	return nil
}

type txAccess struct {
	st *state
}

func (t txAccess) read(fn func(st *state) error) error  { return fn(t.st) }
func (t txAccess) write(fn func(st *state) error) error { return fn(t.st) }

// inTx ejecuta fn sobre una copia del estado con el lock de escritura tomado.
// Los repos entregados a fn no deben mezclarse con los del Store: el lock ya está tomado.
func (s *Store) inTx(ctx context.Context, fn func(a access) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st.clone()
	if err := fn(txAccess{st: next}); err != nil {
		return err
	}
	s.st = next
	return nil
}

// Run transacción del ledger.
func (s *Store) Run(ctx context.Context, fn func(
	variantRepo repository.ProductVariantRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return s.inTx(ctx, func(a access) error {
		return fn(&variantRepo{a: a}, &movementRepo{a: a})
	})
}

// RunSale transacción de venta/anulación.
func (s *Store) RunSale(ctx context.Context, fn func(
	variantRepo repository.ProductVariantRepository,
	movRepo repository.StockMovementRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return s.inTx(ctx, func(a access) error {
		return fn(&variantRepo{a: a}, &movementRepo{a: a}, &saleRepo{a: a})
	})
}

// RunSettlement transacción de liquidación.
func (s *Store) RunSettlement(ctx context.Context, fn func(
	saleRepo repository.SaleRepository,
	adjRepo repository.BalanceAdjustmentRepository,
	settlementRepo repository.SettlementRepository,
) error) error {
	return s.inTx(ctx, func(a access) error {
		return fn(&saleRepo{a: a}, &adjustmentRepo{a: a}, &settlementRepo{a: a})
	})
}

// Repositorios fuera de transacción.

func (s *Store) Owners() repository.OwnerRepository                  { return &ownerRepo{a: s} }
func (s *Store) Catalog() repository.CatalogRepository               { return &catalogRepo{a: s} }
func (s *Store) Variants() repository.ProductVariantRepository       { return &variantRepo{a: s} }
func (s *Store) Movements() repository.StockMovementRepository       { return &movementRepo{a: s} }
func (s *Store) Sales() repository.SaleRepository                    { return &saleRepo{a: s} }
func (s *Store) Adjustments() repository.BalanceAdjustmentRepository { return &adjustmentRepo{a: s} }
func (s *Store) Settlements() repository.SettlementRepository        { return &settlementRepo{a: s} }
func (s *Store) Reports() repository.ReportRepository                { return &reportRepo{a: s} }
