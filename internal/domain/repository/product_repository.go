package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// ProductFilter filtros opcionales para listar productos.
type ProductFilter struct {
	CategoryID string
	ActiveOnly bool
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los Get devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate obtiene el producto bloqueando su fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateStock(ctx context.Context, id string, stock int64, updatedAt time.Time) error
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error
	List(ctx context.Context, filter ProductFilter, limit, offset int) ([]*entity.Product, error)
	// Search busca por nombre normalizado, SKU o código de barras. term ya viene normalizado.
	Search(ctx context.Context, term string, limit int) ([]*entity.Product, error)
	ListLowStock(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}
