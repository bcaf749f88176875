package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pos-api/internal/domain/inventory"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// MovementCommand cambio de stock a aplicar dentro de una unidad de trabajo.
type MovementCommand struct {
	ProductID   string
	Type        string
	Quantity    int64 // positivo para in/out; valor objetivo para adjustment
	ActorID     string
	Note        string
	ReferenceID string
	UnitCost    *decimal.Decimal // opcional, solo entradas: recalcula el costo promedio
}

// Applied resultado de aplicar un movimiento: el registro creado y el producto ya actualizado.
type Applied struct {
	Movement *entity.StockMovement
	Product  *entity.Product
}

// Ledger fuente única del stock actual de cada producto y de su historial de movimientos.
type Ledger struct {
	products repository.ProductRepository
	now      func() time.Time
}

// NewLedger construye el ledger. products se usa solo para lecturas fuera de transacción.
func NewLedger(products repository.ProductRepository) *Ledger {
	return &Ledger{products: products, now: time.Now}
}

// GetCurrentStock devuelve el stock actual del producto.
func (l *Ledger) GetCurrentStock(ctx context.Context, productID string) (int64, error) {
	p, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	return p.CurrentStock, nil
}

// Apply bloquea la fila del producto, calcula el nuevo stock, persiste stock y movimiento
// usando los repositorios de uow. Todas las validaciones ocurren antes de escribir.
func (l *Ledger) Apply(ctx context.Context, uow repository.UnitOfWork, cmd MovementCommand) (*Applied, error) {
	if cmd.ActorID == "" {
		return nil, fmt.Errorf("%w: actor requerido", domain.ErrInvalidInput)
	}
	product, err := uow.Products().GetForUpdate(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, cmd.ProductID)
	}

	tr, err := domaininv.ApplyRule(product.CurrentStock, cmd.Type, cmd.Quantity)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil, domaininv.InsufficientStockError(product, cmd.Quantity)
		}
		return nil, err
	}

	now := l.now().UTC()
	if cmd.Type == entity.MovementTypeIn && cmd.UnitCost != nil {
		if cmd.UnitCost.IsNegative() {
			return nil, fmt.Errorf("%w: costo unitario negativo", domain.ErrInvalidInput)
		}
		product.Cost = domaininv.CostCalculator(product.CurrentStock, product.Cost, cmd.Quantity, *cmd.UnitCost)
		product.UpdatedAt = now
		if err := uow.Products().Update(ctx, product); err != nil {
			return nil, err
		}
	}

	if err := uow.Products().UpdateStock(ctx, product.ID, tr.After, now); err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		ID:          uuid.New().String(),
		ProductID:   product.ID,
		Type:        cmd.Type,
		Quantity:    tr.Delta,
		StockBefore: tr.Before,
		StockAfter:  tr.After,
		ReferenceID: cmd.ReferenceID,
		Note:        cmd.Note,
		ActorID:     cmd.ActorID,
		CreatedAt:   now,
	}
	if err := uow.Movements().Create(ctx, mov); err != nil {
		return nil, err
	}

	product.CurrentStock = tr.After
	product.UpdatedAt = now
	return &Applied{Movement: mov, Product: product}, nil
}
