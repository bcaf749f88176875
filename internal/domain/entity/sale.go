package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados.
const (
	PaymentMethodCash    = "cash"
	PaymentMethodCard    = "card"
	PaymentMethodDigital = "digital"
)

// Sale cabecera de una venta. Inmutable una vez creada.
type Sale struct {
	ID             string
	TransactionID  string // TXN-<timestamp>-<sufijo>, único
	CashierID      string
	TotalAmount    decimal.Decimal
	PaymentMethod  string
	AmountReceived decimal.Decimal
	ChangeGiven    decimal.Decimal
	CreatedAt      time.Time
	Items          []*SaleItem
}

// SaleItem línea de una venta con el precio capturado al momento de vender.
type SaleItem struct {
	ID         string
	SaleID     string
	ProductID  string
	Quantity   int64
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal // Quantity × UnitPrice
}

// IsValidPaymentMethod indica si m es un método de pago conocido.
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodDigital:
		return true
	}
	return false
}
