package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas y sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	// GetByID devuelve la venta con sus líneas, o (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// ListByDateRange devuelve ventas con created_at en [from, to), con sus líneas, más recientes primero.
	ListByDateRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*entity.Sale, error)
}
