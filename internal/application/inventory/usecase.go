package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/pos-api/internal/application/events"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var tracer = otel.Tracer("pos-api/inventory")

// Límites de paginación del historial.
const (
	defaultMovementLimit = 50
	maxMovementLimit     = 200
)

// RegisterMovementInput entrada para registrar un movimiento manual de inventario.
type RegisterMovementInput struct {
	ProductID string
	Type      string // in, out, adjustment
	Quantity  int64  // in/out: cantidad positiva; adjustment: stock objetivo (>= 0)
	ActorID   string
	Note      string
	UnitCost  *decimal.Decimal // opcional en entradas
}

// Validate revisa la forma de la entrada; las reglas de stock se evalúan dentro de la transacción.
func (in RegisterMovementInput) Validate() error {
	if strings.TrimSpace(in.ProductID) == "" {
		return fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.ActorID) == "" {
		return fmt.Errorf("%w: actor requerido", domain.ErrInvalidInput)
	}
	switch in.Type {
	case entity.MovementTypeIn, entity.MovementTypeOut:
		if in.Quantity <= 0 {
			return fmt.Errorf("%w: quantity debe ser mayor a 0", domain.ErrInvalidInput)
		}
	case entity.MovementTypeAdjustment:
		if in.Quantity < 0 {
			return fmt.Errorf("%w: quantity no puede ser negativa en un ajuste", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: type debe ser in, out o adjustment", domain.ErrInvalidInput)
	}
	if in.UnitCost != nil && in.Type != entity.MovementTypeIn {
		return fmt.Errorf("%w: unit_cost solo aplica a entradas", domain.ErrInvalidInput)
	}
	return nil
}

// RegisterMovementUseCase registra movimientos de inventario de forma transaccional
// (in, out, adjustment) con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type RegisterMovementUseCase struct {
	txRunner   TxRunner
	ledger     *Ledger
	movements  repository.StockMovementRepository
	dispatcher *events.Dispatcher
}

// NewRegisterMovementUseCase construye el caso de uso. movements se usa para consultas de historial.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	ledger *Ledger,
	movements repository.StockMovementRepository,
	dispatcher *events.Dispatcher,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner:   txRunner,
		ledger:     ledger,
		movements:  movements,
		dispatcher: dispatcher,
	}
}

// RegisterMovement valida, abre una transacción, aplica el movimiento vía Ledger y hace Commit o Rollback.
// Tras el commit publica stock.changed.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, in RegisterMovementInput) (*entity.StockMovement, error) {
	ctx, span := tracer.Start(ctx, "inventory.register_movement")
	defer span.End()
	span.SetAttributes(
		attribute.String("product.id", in.ProductID),
		attribute.String("movement.type", in.Type),
		attribute.Int64("movement.quantity", in.Quantity),
	)

	if err := in.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var applied *Applied
	err := uc.txRunner.Run(ctx, func(uow repository.UnitOfWork) error {
		var err error
		applied, err = uc.ledger.Apply(ctx, uow, MovementCommand{
			ProductID: in.ProductID,
			Type:      in.Type,
			Quantity:  in.Quantity,
			ActorID:   in.ActorID,
			Note:      strings.TrimSpace(in.Note),
			UnitCost:  in.UnitCost,
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	uc.dispatcher.Dispatch(ctx, StockChangedEvent(applied))
	return applied.Movement, nil
}

// GetCurrentStock devuelve el stock actual del producto.
func (uc *RegisterMovementUseCase) GetCurrentStock(ctx context.Context, productID string) (int64, error) {
	return uc.ledger.GetCurrentStock(ctx, productID)
}

// ListMovements lista el historial (más reciente primero), opcionalmente filtrado por producto.
func (uc *RegisterMovementUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultMovementLimit
	}
	if filter.Limit > maxMovementLimit {
		filter.Limit = maxMovementLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.movements.List(ctx, filter)
}

// StockChangedEvent arma el evento stock.changed a partir de un movimiento aplicado.
func StockChangedEvent(a *Applied) events.Event {
	return events.NewStockChanged(a.Movement.CreatedAt, events.StockChanged{
		ProductID:    a.Product.ID,
		ProductName:  a.Product.Name,
		MovementType: a.Movement.Type,
		Delta:        a.Movement.Quantity,
		Stock:        a.Product.CurrentStock,
		MinStock:     a.Product.MinStock,
		LowStock:     a.Product.IsLowStock(),
		ActorID:      a.Movement.ActorID,
		ReferenceID:  a.Movement.ReferenceID,
	})
}
