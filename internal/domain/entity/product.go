package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de la tienda.
// CurrentStock solo cambia vía movimientos de inventario (nunca por Update directo).
type Product struct {
	ID           string
	Name         string
	SKU          string // único
	Barcode      string // opcional, único si no está vacío
	CategoryID   string // vacío si no tiene categoría
	Price        decimal.Decimal // precio de venta (2 decimales)
	Cost         decimal.Decimal // costo (2 decimales)
	CurrentStock int64
	MinStock     int64
	Active       bool
	SearchName   string // nombre normalizado (minúsculas, sin tildes) para búsqueda
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLowStock indica si el stock actual está en o por debajo del mínimo.
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.MinStock
}
