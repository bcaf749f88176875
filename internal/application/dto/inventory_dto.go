package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// En adjustment, Quantity es el stock objetivo.
type RegisterMovementRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Type      string           `json:"type" validate:"required,oneof=in out adjustment"`
	Quantity  int64            `json:"quantity" validate:"min=0"`
	Note      string           `json:"note" validate:"omitempty,max=500"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty" swaggertype:"number"`
}

// MovementResponse salida de un movimiento. Quantity es el delta con signo.
type MovementResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	Type        string    `json:"type"`
	Quantity    int64     `json:"quantity"`
	StockBefore int64     `json:"stock_before"`
	StockAfter  int64     `json:"stock_after"`
	ReferenceID string    `json:"reference_id,omitempty"`
	Note        string    `json:"note,omitempty"`
	ActorID     string    `json:"actor_id"`
	CreatedAt   time.Time `json:"created_at"`
}
