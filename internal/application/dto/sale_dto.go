package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest una línea del carrito.
type SaleItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  int64           `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" swaggertype:"number"`
}

// CreateSaleRequest body para POST /api/sales. El cajero sale del token.
type CreateSaleRequest struct {
	PaymentMethod  string            `json:"payment_method" validate:"required,oneof=cash card digital"`
	AmountReceived decimal.Decimal   `json:"amount_received" swaggertype:"number"`
	Items          []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SaleItemResponse salida de una línea de venta.
type SaleItemResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price" swaggertype:"number"`
	TotalPrice decimal.Decimal `json:"total_price" swaggertype:"number"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID             string             `json:"id"`
	TransactionID  string             `json:"transaction_id"`
	CashierID      string             `json:"cashier_id"`
	TotalAmount    decimal.Decimal    `json:"total_amount" swaggertype:"number"`
	PaymentMethod  string             `json:"payment_method"`
	AmountReceived decimal.Decimal    `json:"amount_received" swaggertype:"number"`
	ChangeGiven    decimal.Decimal    `json:"change_given" swaggertype:"number"`
	CreatedAt      time.Time          `json:"created_at"`
	Items          []SaleItemResponse `json:"items"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
