package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. InitialStock genera un movimiento "in".
type CreateProductRequest struct {
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	SKU          string          `json:"sku" validate:"required,min=1,max=100"`
	Barcode      string          `json:"barcode" validate:"omitempty,max=64"`
	CategoryID   string          `json:"category_id" validate:"omitempty,uuid"`
	Price        decimal.Decimal `json:"price" swaggertype:"number"`
	Cost         decimal.Decimal `json:"cost" swaggertype:"number"`
	InitialStock int64           `json:"initial_stock" validate:"min=0"`
	MinStock     int64           `json:"min_stock" validate:"min=0"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock ni estado).
type UpdateProductRequest struct {
	Name       *string          `json:"name" validate:"omitempty,min=1,max=200"`
	SKU        *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Barcode    *string          `json:"barcode" validate:"omitempty,max=64"`
	CategoryID *string          `json:"category_id" validate:"omitempty,uuid"`
	Price      *decimal.Decimal `json:"price" swaggertype:"number"`
	Cost       *decimal.Decimal `json:"cost" swaggertype:"number"`
	MinStock   *int64           `json:"min_stock" validate:"omitempty,min=0"`
}

// ProductStatusRequest body para PATCH /api/products/:id/status.
type ProductStatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Barcode      string          `json:"barcode,omitempty"`
	CategoryID   string          `json:"category_id,omitempty"`
	Price        decimal.Decimal `json:"price" swaggertype:"number"`
	Cost         decimal.Decimal `json:"cost" swaggertype:"number"`
	CurrentStock int64           `json:"current_stock"`
	MinStock     int64           `json:"min_stock"`
	LowStock     bool            `json:"low_stock"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// StockResponse salida de GET /api/inventory/products/:id/stock.
type StockResponse struct {
	ProductID    string `json:"product_id"`
	CurrentStock int64  `json:"current_stock"`
}
