package inventory

import (
	"fmt"
	"math"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// Transition resultado de aplicar un movimiento sobre el stock actual.
// Delta es lo que se guarda como cantidad del movimiento.
type Transition struct {
	Before int64
	After  int64
	Delta  int64
}

// ApplyRule calcula el nuevo stock según el tipo de movimiento:
//
//	in          S + q   (q > 0)
//	out         S - q   (q > 0, q <= S)
//	adjustment  q       (q >= 0, valor absoluto)
//
// No muta nada; si devuelve error el caller no debe persistir.
func ApplyRule(current int64, movementType string, quantity int64) (Transition, error) {
	t := Transition{Before: current}
	switch movementType {
	case entity.MovementTypeIn:
		if quantity <= 0 {
			return t, fmt.Errorf("%w: la cantidad de entrada debe ser mayor a 0", domain.ErrInvalidInput)
		}
		if quantity > math.MaxInt64-current {
			return t, fmt.Errorf("%w: la entrada excede el stock máximo representable", domain.ErrInvalidInput)
		}
		t.After = current + quantity
	case entity.MovementTypeOut:
		if quantity <= 0 {
			return t, fmt.Errorf("%w: la cantidad de salida debe ser mayor a 0", domain.ErrInvalidInput)
		}
		if quantity > current {
			return t, domain.ErrInsufficientStock
		}
		t.After = current - quantity
	case entity.MovementTypeAdjustment:
		if quantity < 0 {
			return t, fmt.Errorf("%w: el ajuste no puede ser negativo", domain.ErrInvalidInput)
		}
		t.After = quantity
	default:
		return t, fmt.Errorf("%w: tipo de movimiento %q desconocido", domain.ErrInvalidInput, movementType)
	}
	t.Delta = t.After - t.Before
	return t, nil
}

// AddQuantity suma dos cantidades no negativas y falla con ErrInvalidInput si el resultado desborda int64.
func AddQuantity(a, b int64) (int64, error) {
	if b > math.MaxInt64-a {
		return 0, fmt.Errorf("%w: cantidad fuera de rango", domain.ErrInvalidInput)
	}
	return a + b, nil
}

// InsufficientStockError construye el error de stock insuficiente con nombre, id y cantidades.
func InsufficientStockError(product *entity.Product, requested int64) error {
	return fmt.Errorf("%w para %q (%s): disponible %d, solicitado %d",
		domain.ErrInsufficientStock, product.Name, product.ID, product.CurrentStock, requested)
}
