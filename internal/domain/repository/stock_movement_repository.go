package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// MovementFilter filtro de listado; ProductID vacío lista todos los productos.
type MovementFilter struct {
	ProductID string
	Limit     int
	Offset    int
}

// StockMovementRepository define el puerto de persistencia para el historial de movimientos (solo inserción).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// List devuelve los movimientos del más reciente al más antiguo.
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
}
