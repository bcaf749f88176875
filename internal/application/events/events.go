// Package events define los eventos que el punto de venta emite después de confirmar
// una transacción y el puerto para publicarlos (WebSocket, Kafka).
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de evento.
const (
	TypeStockChanged = "stock.changed"
	TypeSaleCreated  = "sale.created"
)

// Event sobre común para todos los eventos publicados.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"` // clave de partición (product_id o sale_id)
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// StockChanged se emite por cada producto cuyo stock cambió en una transacción confirmada.
type StockChanged struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	MovementType string `json:"movement_type"`
	Delta        int64  `json:"delta"`
	Stock        int64  `json:"stock"`
	MinStock     int64  `json:"min_stock"`
	LowStock     bool   `json:"low_stock"`
	ActorID      string `json:"actor_id"`
	ReferenceID  string `json:"reference_id,omitempty"`
}

// SaleCreated se emite al confirmar una venta.
type SaleCreated struct {
	SaleID        string          `json:"sale_id"`
	TransactionID string          `json:"transaction_id"`
	CashierID     string          `json:"cashier_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Items         int             `json:"items"`
}

// NewStockChanged construye el evento de cambio de stock.
func NewStockChanged(at time.Time, p StockChanged) Event {
	return Event{Type: TypeStockChanged, Key: p.ProductID, OccurredAt: at, Payload: p}
}

// NewSaleCreated construye el evento de venta creada.
func NewSaleCreated(at time.Time, p SaleCreated) Event {
	return Event{Type: TypeSaleCreated, Key: p.SaleID, OccurredAt: at, Payload: p}
}

// Publisher publica eventos hacia un destino externo.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}
