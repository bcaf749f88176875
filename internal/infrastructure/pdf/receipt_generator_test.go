package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0,00", formatMoney(decimal.Zero))
	assert.Equal(t, "28,00", formatMoney(decimal.RequireFromString("28")))
	assert.Equal(t, "1.234.567,50", formatMoney(decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "-1.000,00", formatMoney(decimal.NewFromInt(-1000)))
}

func TestGenerateReceipt(t *testing.T) {
	g := NewReceiptGenerator()
	sale := &entity.Sale{
		TransactionID:  "TXN-20240305140709-ABCDEF01",
		PaymentMethod:  entity.PaymentMethodCash,
		TotalAmount:    decimal.RequireFromString("28.00"),
		AmountReceived: decimal.RequireFromString("30.00"),
		ChangeGiven:    decimal.RequireFromString("2.00"),
		CreatedAt:      time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC),
	}
	out, err := g.GenerateReceipt(context.Background(), sales.ReceiptData{
		StoreName:   "Tienda Centro",
		Sale:        sale,
		CashierName: "Ana",
		Lines: []sales.ReceiptLine{
			{ProductName: "Café", SKU: "CAF-1", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00"), TotalPrice: decimal.RequireFromString("20.00")},
			{ProductName: "Pan", SKU: "PAN-1", Quantity: 1, UnitPrice: decimal.RequireFromString("8.00"), TotalPrice: decimal.RequireFromString("8.00")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))

	_, err = g.GenerateReceipt(context.Background(), sales.ReceiptData{})
	assert.Error(t, err)
}
